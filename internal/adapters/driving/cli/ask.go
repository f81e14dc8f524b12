package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/services"
)

var (
	flagTopK        int
	flagShowSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed documents",
	Long: `Ask embeds the question, retrieves the most similar chunks from the
index and generates an answer grounded in them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		topK := a.cfg.Query.TopK
		if flagTopK > 0 {
			topK = flagTopK
		}

		answerer := services.NewAnswerService(a.store, a.embedder, a.llm, topK, driven.GenerateOptions{
			MaxTokens:   a.cfg.Generation.MaxTokens,
			Temperature: a.cfg.Generation.Temperature,
		})

		question := args[0]

		if flagShowSources {
			result, err := answerer.Retrieve(cmd.Context(), question, topK)
			if err != nil {
				return err
			}
			for i, rec := range result.Records {
				cmd.Printf("[%d] %s (score %.3f)\n", i+1, rec.Record.Document.Path, rec.Score)
			}
			if len(result.Records) > 0 {
				cmd.Println()
			}
		}

		answer, err := answerer.Answer(cmd.Context(), question)
		if err != nil {
			return err
		}

		cmd.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&flagShowSources, "show-sources", false, "print the retrieved source chunks before the answer")
	rootCmd.AddCommand(askCmd)
}
