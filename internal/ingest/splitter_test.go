package ingest

import (
	"strings"
	"testing"
)

func TestNewSplitterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{name: "valid", chunkSize: 500, overlap: 100, wantErr: false},
		{name: "zero overlap", chunkSize: 500, overlap: 0, wantErr: false},
		{name: "zero chunk size", chunkSize: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", chunkSize: 500, overlap: -1, wantErr: true},
		{name: "overlap equals chunk size", chunkSize: 500, overlap: 500, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSplitter(tt.chunkSize, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSplitter(%d, %d) error = %v, wantErr %v",
					tt.chunkSize, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(500, 100)
	chunks := s.Split("A short paragraph that fits in one chunk.")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "A short paragraph that fits in one chunk." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitEmptyText(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(500, 100)

	if got := s.Split(""); len(got) != 0 {
		t.Errorf("Split(empty) = %v, want no chunks", got)
	}
	if got := s.Split("   \n\n  "); len(got) != 0 {
		t.Errorf("Split(whitespace) = %v, want no chunks", got)
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(100, 20)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Some sentence about enclave configuration and attestation flags. ")
	}
	chunks := s.Split(b.String())

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d has length %d, want <= 100", i, len(c))
		}
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(60, 0)
	text := "First paragraph about manifests.\n\nSecond paragraph about attestation."

	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %q", len(chunks), chunks)
	}
	if chunks[0] != "First paragraph about manifests." {
		t.Errorf("chunk 0 = %q, want first paragraph", chunks[0])
	}
	if chunks[1] != "Second paragraph about attestation." {
		t.Errorf("chunk 1 = %q, want second paragraph", chunks[1])
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(50, 20)

	words := strings.Repeat("alpha beta gamma delta epsilon ", 10)
	chunks := s.Split(words)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		// The head of each chunk must appear near the end of its
		// predecessor's coverage of the text.
		head := chunks[i][:10]
		if !strings.Contains(chunks[i-1], strings.TrimSpace(head)) {
			t.Errorf("chunk %d head %q not found in previous chunk %q", i, head, chunks[i-1])
		}
	}
}

func TestSplitHardSplitWithoutSeparators(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(10, 0)
	chunks := s.Split(strings.Repeat("x", 25))

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if len(c) > 10 {
			t.Errorf("chunk %d has length %d, want <= 10", i, len(c))
		}
	}
}

func TestSplitPreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	s, _ := NewSplitter(40, 0)
	text := "one one one one one.\n\ntwo two two two two.\n\nthree three three three."

	chunks := s.Split(text)
	joined := strings.Join(chunks, " ")
	one := strings.Index(joined, "one")
	two := strings.Index(joined, "two")
	three := strings.Index(joined, "three")
	if !(one < two && two < three) {
		t.Errorf("chunks out of document order: %v", chunks)
	}
}
