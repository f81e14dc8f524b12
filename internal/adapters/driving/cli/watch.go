package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/services"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index whenever the source directory changes",
	Long: `Watch monitors the source directory and rebuilds the index after each
batch of changes. Changes arriving in quick succession trigger a single
rebuild. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		builder := services.NewBuildService(
			a.connector, a.registry, a.pipeline, a.embedder, a.store, a.cfg.Build.Workers,
		)

		ctx := cmd.Context()

		rebuild := func() {
			summary, err := builder.Build(ctx)
			if err != nil {
				logger.Warn("rebuild failed: %v", err)
				return
			}
			cmd.Printf("Rebuilt index: %d documents, %d chunks\n",
				summary.DocumentsIndexed, summary.ChunksEmbedded)
		}

		changes, err := a.connector.Watch(ctx)
		if err != nil {
			return err
		}

		cmd.Printf("Watching %s\n", a.cfg.Source.Root)
		rebuild()

		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
				rebuild()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
