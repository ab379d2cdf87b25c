package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"docchat/internal/ingest"
)

var flagReplace bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [docs-root]",
	Short: "Load a built documentation tree into the knowledge store",
	Long: `Ingest walks a built HTML documentation tree, extracts the main content
of each page, splits it into overlapping chunks, and stores the chunks with
their embeddings.

Chunk IDs are deterministic, so re-running ingest over the same tree
updates existing chunks. Use --replace to clear the collection first.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&flagReplace, "replace", false, "delete the collection before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root := args[0]

	// One ingest at a time per machine; concurrent runs would interleave
	// partial batches in the store.
	lock := flock.New(filepath.Join(os.TempDir(), "docchat-ingest.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another ingest is already running")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: releasing ingest lock: %v\n", err)
		}
	}()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagReplace {
		if err := a.Store.DeleteCollection(ctx); err != nil {
			return fmt.Errorf("clear collection: %w", err)
		}
	}

	loader, err := ingest.NewLoader(root, a.Config.DocsBaseURL, a.Logger)
	if err != nil {
		return err
	}
	docs, err := loader.Load()
	if err != nil {
		return err
	}

	splitter, err := ingest.NewSplitter(a.Config.ChunkSize, a.Config.ChunkOverlap)
	if err != nil {
		return err
	}
	ingestor, err := ingest.NewIngestor(splitter, a.Embedder, a.Store, a.Logger)
	if err != nil {
		return err
	}

	stats, err := ingestor.Ingest(ctx, docs)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d chunks from %d pages into collection %q.\n",
		stats.Chunks, stats.Pages, a.Config.Collection)
	return nil
}
