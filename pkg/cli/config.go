package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/adapter"
	"github.com/rmts-health/rmts/pkg/document"
	"github.com/rmts-health/rmts/pkg/repository"
	"github.com/rmts-health/rmts/pkg/usecase/report"
	"github.com/rmts-health/rmts/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Repository
	project     string
	database    string
	credentials string

	// Storage
	bucket         string
	storageBaseURL string

	// LLM
	llmProvider     string
	llmTimeout      time.Duration
	geminiProject   string
	geminiLocation  string
	geminiAPIKey    string
	geminiModel     string
	openaiAPIKey    string
	openaiModel     string
	anthropicAPIKey string
	claudeModel     string

	// Document
	labelsPath string
	timezone   string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("RMTS_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("RMTS_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Path to a service account key file. Application default credentials are used if empty",
			Sources:     cli.EnvVars("RMTS_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
	}
}

// storageFlags returns flags for report document storage
func storageFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Aliases:     []string{"b"},
			Usage:       "Cloud Storage bucket for report documents",
			Sources:     cli.EnvVars("RMTS_STORAGE_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-base-url",
			Usage:       "Base of token-bearing download URLs",
			Value:       report.DefaultStorageBaseURL,
			Sources:     cli.EnvVars("RMTS_STORAGE_BASE_URL"),
			Destination: &cfg.storageBaseURL,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Narrative generation backend (gemini, openai, claude, none)",
			Value:       "gemini",
			Sources:     cli.EnvVars("RMTS_LLM_PROVIDER"),
			Destination: &cfg.llmProvider,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Usage:       "Timeout of a narrative generation call before the fallback narrative is used",
			Value:       report.DefaultLLMTimeout,
			Sources:     cli.EnvVars("RMTS_LLM_TIMEOUT"),
			Destination: &cfg.llmTimeout,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini on Vertex AI",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key, used instead of Vertex AI when set",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI model name",
			Sources:     cli.EnvVars("OPENAI_MODEL"),
			Destination: &cfg.openaiModel,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Claude model name",
			Sources:     cli.EnvVars("CLAUDE_MODEL"),
			Destination: &cfg.claudeModel,
		},
	}
}

// documentFlags returns flags for the PDF layout
func documentFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "report-labels",
			Usage:       "YAML file overriding report labels",
			Sources:     cli.EnvVars("RMTS_REPORT_LABELS"),
			Destination: &cfg.labelsPath,
		},
		&cli.StringFlag{
			Name:        "report-timezone",
			Usage:       "IANA time zone of the generation timestamp printed on reports",
			Value:       "UTC",
			Sources:     cli.EnvVars("RMTS_REPORT_TIMEZONE"),
			Destination: &cfg.timezone,
		},
	}
}

// allFlags is every flag group needed to build the report use case
func allFlags(cfg *config) []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, globalFlags(cfg)...)
	flags = append(flags, storageFlags(cfg)...)
	flags = append(flags, llmFlags(cfg)...)
	flags = append(flags, documentFlags(cfg)...)
	return flags
}

// setupLogger installs the configured logger as default and into ctx
func (cfg *config) setupLogger(ctx context.Context) (context.Context, *slog.Logger) {
	logger := logging.New(cfg.logLevel, os.Stderr, logging.WithFormat(cfg.logFormat))
	logging.SetDefault(logger)
	return logging.With(ctx, logger), logger
}

func (cfg *config) clientOptions() []option.ClientOption {
	if cfg.credentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.credentials)}
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (*repository.Firestore, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database, cfg.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (*adapter.CloudStorage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket, cfg.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newLLM creates the configured narrative backend. It returns nil for "none".
func (cfg *config) newLLM(ctx context.Context) (adapter.LLM, error) {
	switch strings.ToLower(cfg.llmProvider) {
	case "none", "":
		return nil, nil

	case "gemini":
		var opts []adapter.GeminiOption
		if cfg.geminiModel != "" {
			opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
		}
		var (
			gemini *adapter.GeminiClient
			err    error
		)
		switch {
		case cfg.geminiAPIKey != "":
			gemini, err = adapter.NewGeminiWithAPIKey(ctx, cfg.geminiAPIKey, opts...)
		case cfg.geminiProject == "":
			return nil, goerr.New("gemini-project or gemini-api-key is required")
		case cfg.geminiLocation == "":
			return nil, goerr.New("gemini-location is required")
		default:
			gemini, err = adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
		}
		if err != nil {
			return nil, err
		}
		return gemini, nil

	case "openai":
		if cfg.openaiAPIKey == "" {
			return nil, goerr.New("openai-api-key is required")
		}
		return adapter.NewOpenAI(cfg.openaiAPIKey, cfg.openaiModel), nil

	case "claude", "anthropic":
		if cfg.anthropicAPIKey == "" {
			return nil, goerr.New("anthropic-api-key is required")
		}
		return adapter.NewClaude(cfg.anthropicAPIKey, cfg.claudeModel), nil

	default:
		return nil, goerr.New("unknown llm provider", goerr.V("provider", cfg.llmProvider))
	}
}

// newRenderer creates the document renderer from label and time zone settings
func (cfg *config) newRenderer() (*document.Renderer, error) {
	var opts []document.Option

	if cfg.labelsPath != "" {
		labels, err := document.LoadLabels(cfg.labelsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, document.WithLabels(labels))
	}

	if cfg.timezone != "" {
		loc, err := time.LoadLocation(cfg.timezone)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid report timezone", goerr.V("timezone", cfg.timezone))
		}
		opts = append(opts, document.WithLocation(loc))
	}

	return document.New(opts...), nil
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// closeAll returns a function closing every client in order. A failing Close is logged
// and does not stop the rest.
func closeAll(ctx context.Context, closers ...namedCloser) func() {
	return func() {
		for _, c := range closers {
			if err := c.closer.Close(); err != nil {
				logging.From(ctx).Warn("failed to close client", "client", c.name, "error", err)
			}
		}
	}
}

// newUseCase wires every adapter into the report use case. The returned function
// releases the clients.
func (cfg *config) newUseCase(ctx context.Context) (*report.UseCase, func(), error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	storage, err := cfg.newStorage(ctx)
	if err != nil {
		closeAll(ctx, namedCloser{"repository", repo})()
		return nil, nil, err
	}
	cleanup := closeAll(ctx,
		namedCloser{"repository", repo},
		namedCloser{"storage", storage},
	)

	renderer, err := cfg.newRenderer()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	opts := []report.Option{
		report.WithRenderer(renderer),
		report.WithStorageBaseURL(cfg.storageBaseURL),
		report.WithLLMTimeout(cfg.llmTimeout),
	}

	llm, err := cfg.newLLM(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if llm != nil {
		opts = append(opts, report.WithLLM(llm))
	} else {
		logging.From(ctx).Warn("no language model configured, reports use the fallback narrative")
	}

	return report.New(repo, storage, opts...), cleanup, nil
}
