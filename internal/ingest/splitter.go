package ingest

import (
	"fmt"
	"strings"
)

// defaultSeparators orders split points from strongest to weakest: paragraph
// breaks, line breaks, word breaks, then a hard character split.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts document text into overlapping chunks. Splits happen at the
// strongest separator that keeps pieces within the chunk size, so chunk
// boundaries tend to land on paragraph and sentence edges rather than in
// the middle of a word.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a Splitter. overlap must be smaller than chunkSize.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, overlap)
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split returns the chunks of text in document order. Every chunk is at
// most the chunk size; consecutive chunks share up to overlap characters.
// Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	fragments := s.fragment(text, s.separators)

	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() string {
		chunk := cur.String()
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		cur.Reset()
		return chunk
	}

	for _, frag := range fragments {
		if cur.Len() > 0 && cur.Len()+len(frag) > s.chunkSize {
			prev := flush()
			// Seed the next chunk with the tail of the previous one so
			// context spanning a boundary survives in both chunks.
			if s.overlap > 0 {
				tail := prev
				if len(tail) > s.overlap {
					tail = tail[len(tail)-s.overlap:]
				}
				if len(tail)+len(frag) <= s.chunkSize {
					cur.WriteString(tail)
				}
			}
		}
		cur.WriteString(frag)
	}
	flush()

	return chunks
}

// fragment recursively splits text into pieces no larger than the chunk
// size, preferring earlier (stronger) separators. Separators stay attached
// to the preceding piece so concatenating fragments reproduces the text.
func (s *Splitter) fragment(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	rest := separators
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		// Hard split: no separator left, cut at the chunk size.
		var out []string
		for len(text) > s.chunkSize {
			out = append(out, text[:s.chunkSize])
			text = text[s.chunkSize:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}

	var out []string
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) > s.chunkSize {
			out = append(out, s.fragment(piece, rest)...)
		} else {
			out = append(out, piece)
		}
	}
	return out
}
