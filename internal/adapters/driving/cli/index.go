package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/services"
)

var flagWorkers int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index from the configured source directory",
	Long: `Index crawls the source directory, extracts and chunks every eligible
file, embeds the chunks and commits a new index generation. The previous
generation stays readable until the new one is in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		workers := a.cfg.Build.Workers
		if flagWorkers > 0 {
			workers = flagWorkers
		}

		builder := services.NewBuildService(
			a.connector, a.registry, a.pipeline, a.embedder, a.store, workers,
		)

		summary, err := builder.Build(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("Indexed %d documents (%d chunks) in %s\n",
			summary.DocumentsIndexed, summary.ChunksEmbedded, summary.Duration.Round(10*time.Millisecond))
		if summary.DocumentsSkipped > 0 {
			cmd.Printf("Skipped %d documents with no extractable text\n", summary.DocumentsSkipped)
		}
		if summary.DocumentsFailed > 0 {
			cmd.Printf("Failed to index %d documents\n", summary.DocumentsFailed)
		}
		if summary.ChunksFailed > 0 {
			cmd.Printf("Dropped %d chunks after embedding failures\n", summary.ChunksFailed)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent embedding workers (default from config)")
	rootCmd.AddCommand(indexCmd)
}
