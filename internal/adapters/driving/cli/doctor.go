package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the embedding and generation services are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		var failed error

		if err := a.embedder.Ping(cmd.Context()); err != nil {
			cmd.Printf("embedding service (%s): %v\n", a.cfg.Embedding.BaseURL, err)
			failed = err
		} else {
			cmd.Printf("embedding service (%s): ok\n", a.cfg.Embedding.BaseURL)
		}

		if err := a.llm.Ping(cmd.Context()); err != nil {
			cmd.Printf("generation service (%s): %v\n", a.cfg.Generation.BaseURL, err)
			failed = err
		} else {
			cmd.Printf("generation service (%s): ok\n", a.cfg.Generation.BaseURL)
		}

		if err := a.connector.Validate(cmd.Context()); err != nil {
			cmd.Printf("source directory (%s): %v\n", a.cfg.Source.Root, err)
			failed = err
		} else {
			cmd.Printf("source directory (%s): ok\n", a.cfg.Source.Root)
		}

		if failed != nil {
			return errors.New("one or more checks failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
