package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// pdfText reads the text layer with ledongthuc/pdf. The library panics on some
// malformed files, so panics are turned into errors.
func pdfText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", 0, err
	}
	return buf.String(), r.NumPage(), nil
}

var (
	textBlockRe = regexp.MustCompile(`(?s)BT(.*?)ET`)
	showTextRe  = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*(?:Tj|'|")|\[((?:[^\]\\]|\\.)*)\]\s*TJ`)
	arrayPartRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	pageRe      = regexp.MustCompile(`/Type\s*/Page\b`)
)

// pdfOperators scans uncompressed content streams for text showing operators.
// It recovers text from files whose structure the full reader rejects.
func pdfOperators(data []byte) (string, int, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("%PDF")) {
		return "", 0, errors.New("missing %PDF header")
	}

	var b strings.Builder
	for _, block := range textBlockRe.FindAllSubmatch(data, -1) {
		for _, m := range showTextRe.FindAllSubmatch(block[1], -1) {
			if m[1] != nil {
				b.WriteString(unescapePDFString(m[1]))
			} else {
				for _, part := range arrayPartRe.FindAllSubmatch(m[2], -1) {
					b.WriteString(unescapePDFString(part[1]))
				}
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", 0, errors.New("no text operators found")
	}
	return b.String(), len(pageRe.FindAll(data, -1)), nil
}

func unescapePDFString(raw []byte) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i == len(raw)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r', 't', 'b', 'f':
			b.WriteByte(' ')
		case '\n', '\r':
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}
