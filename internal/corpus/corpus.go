// Package corpus loads the pre-built HR document artifact.
//
// The artifact is a JSON array of normalized (text, metadata) records
// produced by the preprocessing pipeline. It is loaded once at startup and
// is immutable thereafter; every other component treats the corpus as
// read-only input.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	// ErrEmptyCorpus indicates the artifact contained no usable records.
	ErrEmptyCorpus = errors.New("corpus contains no records")
)

// Record is one normalized document from the preprocessing pipeline.
type Record struct {
	Text       string            `json:"text"`
	Source     string            `json:"source"`      // originating file or document name
	SourceType string            `json:"source_type"` // "pdf", "spreadsheet", "word", ...
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Chunk is a retrieval unit derived from a Record by the Splitter.
type Chunk struct {
	ID         string // record source + chunk index, unique within the corpus
	Text       string
	Source     string
	SourceType string
	Index      int // chunk position within its record
}

// Corpus holds the loaded artifact. Immutable after Load.
type Corpus struct {
	records []Record
}

// Load reads the artifact at path.
// Records with empty text are dropped; an artifact with no usable records
// is an error since the assistant cannot answer without context.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus artifact: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing corpus artifact %s: %w", path, err)
	}

	kept := records[:0]
	for _, r := range records {
		if r.Text != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, path)
	}

	return &Corpus{records: kept}, nil
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Records returns the loaded records. Callers must not modify the slice.
func (c *Corpus) Records() []Record {
	return c.records
}

// Chunks splits every record with the given splitter.
func (c *Corpus) Chunks(s *Splitter) []Chunk {
	var chunks []Chunk
	for _, rec := range c.records {
		pieces := s.Split(rec.Text)
		for i, text := range pieces {
			chunks = append(chunks, Chunk{
				ID:         rec.Source + ":" + strconv.Itoa(i),
				Text:       text,
				Source:     rec.Source,
				SourceType: rec.SourceType,
				Index:      i,
			})
		}
	}
	return chunks
}
