package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/superlawyer/hrchat/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the document corpus",
	Long: `Corpus loads the pre-built document artifact and reports what the
assistant will index: record and chunk counts per source document.
Runs entirely offline; no API key required.`,
	RunE: runCorpus,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
}

func runCorpus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	corp, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	splitter := corpus.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	chunks := corp.Chunks(splitter)

	type sourceStats struct {
		sourceType string
		records    int
		chunks     int
	}
	stats := make(map[string]*sourceStats)
	for _, rec := range corp.Records() {
		s, ok := stats[rec.Source]
		if !ok {
			s = &sourceStats{sourceType: rec.SourceType}
			stats[rec.Source] = s
		}
		s.records++
	}
	for _, ch := range chunks {
		stats[ch.Source].chunks++
	}

	sources := make([]string, 0, len(stats))
	for src := range stats {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	fmt.Printf("Corpus: %s\n", cfg.CorpusPath)
	fmt.Printf("Records: %d, chunks: %d (chunk_size=%d, overlap=%d)\n\n",
		corp.Len(), len(chunks), cfg.ChunkSize, cfg.ChunkOverlap)
	for _, src := range sources {
		s := stats[src]
		fmt.Printf("  %-40s %-12s %3d records %4d chunks\n", src, s.sourceType, s.records, s.chunks)
	}
	return nil
}
