package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current index generation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		manifest, err := a.store.Manifest(cmd.Context())
		if errors.Is(err, domain.ErrIndexNotFound) {
			cmd.Println("No index found. Run 'recall index' to build one.")
			return nil
		}
		if err != nil {
			return err
		}

		cmd.Printf("Generation:      %d\n", manifest.Generation)
		cmd.Printf("Documents:       %d\n", manifest.DocumentCount)
		cmd.Printf("Chunks:          %d\n", manifest.ChunkCount)
		cmd.Printf("Embedding model: %s (%d dimensions)\n", manifest.EmbeddingModel, manifest.Dimensions)
		cmd.Printf("Built:           %s\n", manifest.CreatedAt.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
