package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docchat/internal/log"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Attestation</title></head>
<body>
<nav><a href="/">Home</a></nav>
<main>
<h1>Attestation</h1>
<p>Attestation proves an enclave's identity to a remote verifier. The quote
embeds a measurement of the enclave at load time, and the verifier checks the
measurement against the expected value before releasing any secrets to the
running enclave instance.</p>
<p>Configure attestation in the manifest before building the image so the
measurement covers the final set of trusted files in the enclave.</p>
</main>
</body>
</html>`

func TestNewLoaderValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewLoader("", "https://docs.example.com", log.NewNop()); err == nil {
		t.Error("NewLoader() with empty root should fail")
	}
	if _, err := NewLoader(t.TempDir(), "", log.NewNop()); err == nil {
		t.Error("NewLoader() with empty base URL should fail")
	}
}

func TestLoadMapsPathsToURLs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "attestation.html", samplePage)
	writeFile(t, root, "manifest/syntax.html", samplePage)

	l, err := NewLoader(root, "https://docs.example.com/latest/", log.NewNop())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	docs, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}

	ids := make(map[string]bool)
	for _, doc := range docs {
		ids[doc.SourceID] = true
	}
	for _, want := range []string{
		"https://docs.example.com/latest/attestation.html",
		"https://docs.example.com/latest/manifest/syntax.html",
	} {
		if !ids[want] {
			t.Errorf("missing source ID %q in %v", want, ids)
		}
	}
}

func TestLoadExtractsMainContent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "page.html", samplePage)

	l, _ := NewLoader(root, "https://docs.example.com", log.NewNop())
	docs, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}

	if !strings.Contains(docs[0].Text, "proves an enclave's identity") {
		t.Errorf("extracted text missing body content: %q", docs[0].Text)
	}
}

func TestLoadIgnoresNonHTML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "page.html", samplePage)
	writeFile(t, root, "styles.css", "body { margin: 0 }")
	writeFile(t, root, "search.js", "window.search = {}")

	l, _ := NewLoader(root, "https://docs.example.com", log.NewNop())
	docs, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1 (non-HTML files skipped)", len(docs))
	}
}

func TestLoadSkipsEmptyPages(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "empty.html", "<html><body></body></html>")
	writeFile(t, root, "page.html", samplePage)

	l, _ := NewLoader(root, "https://docs.example.com", log.NewNop())
	docs, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1 (empty page skipped)", len(docs))
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	in := "Title\n\n\n\nParagraph one.   \n\n\nParagraph two.\n\n"
	want := "Title\n\nParagraph one.\n\nParagraph two."

	if got := normalizeText(in); got != want {
		t.Errorf("normalizeText() = %q, want %q", got, want)
	}
}
