package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := flagConfigPath
		if path == "" {
			var err error
			path, err = file.DefaultPath()
			if err != nil {
				return err
			}
		}

		written, err := file.Save(path, file.Default())
		if err != nil {
			return err
		}

		cmd.Printf("Wrote %s\n", written)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := file.Load(flagConfigPath)
		if err != nil {
			return err
		}

		cmd.Printf("Source root:      %s\n", cfg.Source.Root)
		cmd.Printf("Exclusions:       %v\n", cfg.Source.Exclusions)
		cmd.Printf("Extensions:       %v\n", cfg.Source.Extensions)
		cmd.Printf("Chunk size:       %d (overlap %d)\n", cfg.Chunking.Size, cfg.Chunking.Overlap)
		cmd.Printf("Embedding model:  %s (%d dimensions) at %s\n",
			cfg.Embedding.Model, cfg.Embedding.Dimensions, cfg.Embedding.BaseURL)
		cmd.Printf("Generation model: %s at %s\n", cfg.Generation.Model, cfg.Generation.BaseURL)
		cmd.Printf("Index location:   %s\n", cfg.Index.Location)
		cmd.Printf("Top-K:            %d\n", cfg.Query.TopK)
		cmd.Printf("Build workers:    %d\n", cfg.Build.Workers)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
