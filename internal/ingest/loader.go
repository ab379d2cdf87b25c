// Package ingest turns a built documentation tree into embedded chunks in
// the knowledge store: load HTML pages, extract their main text, split it
// into overlapping chunks, and write embeddings in batches.
package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Document is one loaded documentation page.
type Document struct {
	// SourceID is the public URL of the page, derived from its path under
	// the docs root. Answers cite this value.
	SourceID string
	// Text is the extracted main content of the page.
	Text string
}

// Loader reads HTML files under a docs root and maps each file path to its
// published URL.
type Loader struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

// NewLoader creates a Loader. baseURL is the published site prefix that
// replaces the local root in source IDs.
func NewLoader(root, baseURL string, logger *slog.Logger) (*Loader, error) {
	if root == "" {
		return nil, fmt.Errorf("docs root is required")
	}
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid docs base URL %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		root:    filepath.Clean(root),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Load walks the docs root and returns one Document per HTML page, in
// walk order. Pages whose content cannot be extracted are skipped with a
// warning rather than failing the whole run.
func (l *Loader) Load() ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isHTML(path) {
			return nil
		}

		sourceID, err := l.sourceURL(path)
		if err != nil {
			return fmt.Errorf("map %s to source URL: %w", path, err)
		}

		text, err := l.extract(path, sourceID)
		if err != nil {
			l.logger.Warn("skipping page, content extraction failed", "path", path, "error", err)
			return nil
		}
		if strings.TrimSpace(text) == "" {
			l.logger.Debug("skipping page with no extractable text", "path", path)
			return nil
		}
		docs = append(docs, Document{SourceID: sourceID, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs root %s: %w", l.root, err)
	}

	l.logger.Info("loaded documentation pages", "root", l.root, "pages", len(docs))
	return docs, nil
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// extract pulls the main content out of an HTML page. Readability
// extraction strips navigation and boilerplate; when it fails, the whole
// body text is used instead.
func (l *Loader) extract(path, sourceID string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pageURL, err := url.Parse(sourceID)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(f, pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return normalizeText(article.TextContent), nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", err
	}
	return normalizeText(doc.Find("body").Text()), nil
}

// sourceURL maps a local file path to its published URL under the base.
func (l *Loader) sourceURL(path string) (string, error) {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return "", err
	}
	return l.baseURL + "/" + filepath.ToSlash(rel), nil
}

// normalizeText collapses runs of blank lines and trims trailing space so
// the splitter sees clean paragraph boundaries.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	var (
		out       []string
		lastBlank bool
	)
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		blank := strings.TrimSpace(line) == ""
		if blank && lastBlank {
			continue
		}
		out = append(out, line)
		lastBlank = blank
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
