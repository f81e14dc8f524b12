// Package cli provides the command line interface.
// Commands wire the driven adapters to the core services per invocation;
// a build holds the index lock only for its own lifetime.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/config/file"
	embedollama "github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/custodia-labs/recall-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/storage/localindex"
	"github.com/custodia-labs/recall-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/logger"
	"github.com/custodia-labs/recall-cli/internal/normalisers"
	"github.com/custodia-labs/recall-cli/internal/normalisers/audio"
	"github.com/custodia-labs/recall-cli/internal/normalisers/docx"
	"github.com/custodia-labs/recall-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/recall-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/recall-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/recall-cli/internal/postprocessors"
)

// version is set by Execute.
var version = "dev"

var (
	flagVerbose    bool
	flagConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Index local documents and ask questions about them",
	Long: `Recall indexes a local directory tree and answers questions about
its contents using local embedding and generation models via Ollama.
Nothing leaves the machine.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default ~/.recall/config.toml)")
}

// Execute runs the root command under the given context.
func Execute(ctx context.Context, v string) error {
	version = v
	return rootCmd.ExecuteContext(ctx)
}

// app bundles the wired adapters for one command invocation.
type app struct {
	cfg       *file.Config
	connector *filesystem.Connector
	registry  driven.NormaliserRegistry
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	store     driven.IndexStore
}

// loadApp loads configuration and constructs the adapter set.
func loadApp() (*app, error) {
	cfg, err := file.Load(flagConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())
	registry.Register(docx.New())
	registry.Register(pdf.New())
	registry.Register(audio.New())

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return nil, err
	}

	store, err := localindex.NewStore(cfg.Index.Location)
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}

	return &app{
		cfg:       cfg,
		connector: filesystem.New(cfg.Source.Root, cfg.Source.Exclusions, cfg.Source.Extensions),
		registry:  registry,
		pipeline:  pipeline,
		embedder: embedollama.NewEmbeddingService(embedollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    cfg.Embedding.Timeout(),
			MaxRetries: cfg.Embedding.MaxRetries,
			RateLimit:  cfg.Embedding.RateLimit,
		}),
		llm: llmollama.NewLLMService(llmollama.LLMConfig{
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Timeout: cfg.Generation.Timeout(),
		}),
		store: store,
	}, nil
}

// buildPipeline constructs the post-processing pipeline from the
// processor registry. The chunker always runs first, configured from the
// chunking section; further processors come from the processors list.
func buildPipeline(cfg *file.Config) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	chunkerProc, err := registry.Build("chunker", map[string]any{
		"chunk_size": cfg.Chunking.Size,
		"overlap":    cfg.Chunking.Overlap,
	})
	if err != nil {
		return nil, fmt.Errorf("configure chunker: %w", err)
	}

	processors := []driven.PostProcessor{chunkerProc}
	for _, pc := range cfg.Processors {
		proc, err := registry.Build(pc.Name, pc.Config)
		if err != nil {
			return nil, fmt.Errorf("configure processor %q: %w", pc.Name, err)
		}
		processors = append(processors, proc)
	}

	return postprocessors.NewPipeline(processors...), nil
}

// close releases the adapter resources.
func (a *app) close() {
	_ = a.connector.Close()
	_ = a.embedder.Close()
	_ = a.llm.Close()
}
