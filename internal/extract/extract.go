// Package extract turns resume and job description files into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnreadable        = errors.New("document is unreadable")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTooLarge          = errors.New("document is too large")
)

// Error reports why a document could not be turned into text. It matches one of the
// sentinel errors above with errors.Is and also unwraps to the underlying cause.
type Error struct {
	Path  string
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Cause)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

const (
	MethodPDFText       = "pdf_text"
	MethodPDFOperators  = "pdf_operators"
	MethodDocxXML       = "docx_xml"
	MethodPlainText     = "plain_text"
	defaultMaxSizeBytes = 10 << 20
	defaultMinTextChars = 20
)

// Document is the text of one file plus how it was obtained.
type Document struct {
	Path   string `json:"path"`
	Text   string `json:"-"`
	Method string `json:"method"`
	Pages  int    `json:"pages,omitempty"`
}

// DocumentExtractor reads a file and returns its text.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (Document, error)
}

type Config struct {
	MaxSizeBytes int64 `mapstructure:"max-size-bytes" validate:"gte=0"`
	MinTextChars int   `mapstructure:"min-text-chars" validate:"gte=0"`
}

// method is one way of getting text out of raw bytes.
type method struct {
	name string
	run  func(data []byte) (text string, pages int, err error)
}

// Files extracts text from local files, trying each method registered for the file
// extension in order until one yields enough text.
type Files struct {
	maxSize  int64
	minChars int
	methods  map[string][]method
	readFile func(string) ([]byte, error)
}

// New builds a file extractor. Zero config values fall back to 10 MiB and 20 characters.
func New(cfg Config) *Files {
	f := &Files{
		maxSize:  cfg.MaxSizeBytes,
		minChars: cfg.MinTextChars,
		readFile: os.ReadFile,
	}
	if f.maxSize <= 0 {
		f.maxSize = defaultMaxSizeBytes
	}
	if f.minChars <= 0 {
		f.minChars = defaultMinTextChars
	}

	pdfMethods := []method{
		{name: MethodPDFText, run: pdfText},
		{name: MethodPDFOperators, run: pdfOperators},
	}
	plain := []method{{name: MethodPlainText, run: plainText}}
	f.methods = map[string][]method{
		".pdf":  pdfMethods,
		".docx": {{name: MethodDocxXML, run: docxReader(f.maxSize)}},
		".txt":  plain,
		".md":   plain,
		".text": plain,
	}
	return f
}

// Supported reports whether path has an extension the extractor understands.
func (f *Files) Supported(path string) bool {
	_, ok := f.methods[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract implements DocumentExtractor.
func (f *Files) Extract(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	methods, ok := f.methods[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Document{}, &Error{Path: path, Kind: ErrUnsupportedFormat, Cause: fmt.Errorf("extension %q", filepath.Ext(path))}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Document{}, &Error{Path: path, Kind: ErrUnreadable, Cause: err}
	}
	if info.IsDir() {
		return Document{}, &Error{Path: path, Kind: ErrUnreadable, Cause: errors.New("is a directory")}
	}
	if info.Size() > f.maxSize {
		return Document{}, &Error{Path: path, Kind: ErrTooLarge, Cause: fmt.Errorf("%d bytes, limit %d", info.Size(), f.maxSize)}
	}

	data, err := f.readFile(path)
	if err != nil {
		return Document{}, &Error{Path: path, Kind: ErrUnreadable, Cause: err}
	}

	var failures []error
	for _, m := range methods {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}

		text, pages, err := m.run(data)
		if errors.Is(err, ErrTooLarge) {
			return Document{}, &Error{Path: path, Kind: ErrTooLarge, Cause: fmt.Errorf("%s: %w", m.name, err)}
		}
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		text = normalizeWhitespace(text)
		if utf8.RuneCountInString(text) < f.minChars {
			failures = append(failures, fmt.Errorf("%s: only %d characters of text", m.name, utf8.RuneCountInString(text)))
			continue
		}
		return Document{Path: path, Text: text, Method: m.name, Pages: pages}, nil
	}

	return Document{}, &Error{Path: path, Kind: ErrUnreadable, Cause: errors.Join(failures...)}
}

// Expand replaces every directory in paths with the supported files it contains,
// sorted by name. Files named explicitly are kept even when unsupported so that
// Extract can report them.
func (f *Files) Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !f.Supported(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(p, entry.Name()))
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}

func plainText(data []byte) (string, int, error) {
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), " "), 0, nil
	}
	return string(data), 0, nil
}

var (
	spacesRe   = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	newlinesRe = regexp.MustCompile(`\s*\n\s*`)
)

func normalizeWhitespace(s string) string {
	s = spacesRe.ReplaceAllString(s, " ")
	s = newlinesRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
