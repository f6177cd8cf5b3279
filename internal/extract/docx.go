package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// docxReader returns a method that reads word/document.xml, refusing to inflate more
// than limit bytes of it.
func docxReader(limit int64) func([]byte) (string, int, error) {
	return func(data []byte) (string, int, error) {
		return docxText(data, limit)
	}
}

func docxText(data []byte, limit int64) (string, int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", 0, err
		}
		raw, err := io.ReadAll(io.LimitReader(rc, limit+1))
		rc.Close()
		if err != nil {
			return "", 0, err
		}
		if int64(len(raw)) > limit {
			return "", 0, fmt.Errorf("word/document.xml inflates past %d bytes: %w", limit, ErrTooLarge)
		}

		doc := strings.ReplaceAll(string(raw), "</w:p>", "\n")
		doc = strings.ReplaceAll(doc, "<w:tab/>", "\t")
		doc = xmlTagRe.ReplaceAllString(doc, "")
		return html.UnescapeString(doc), 0, nil
	}
	return "", 0, errors.New("no word/document.xml in archive")
}
