package report

import (
	"time"

	"github.com/rmts-health/rmts/pkg/adapter"
	"github.com/rmts-health/rmts/pkg/document"
	"github.com/rmts-health/rmts/pkg/repository"
)

const (
	// DefaultStorageBaseURL is the download endpoint prefix of token-bearing report URLs
	DefaultStorageBaseURL = "https://firebasestorage.googleapis.com/v0/b"
	// DefaultLLMTimeout bounds a single narrative generation call
	DefaultLLMTimeout = 30 * time.Second
)

// UseCase generates clinical reports and serves stored ones
type UseCase struct {
	repo           repository.Repository
	storage        adapter.Storage
	llm            adapter.LLM
	llmTimeout     time.Duration
	renderer       *document.Renderer
	storageBaseURL string
	now            func() time.Time

	composer *Composer
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithLLM sets the narrative generation backend. Without it every report uses the
// fallback narrative.
func WithLLM(llm adapter.LLM) Option {
	return func(uc *UseCase) {
		uc.llm = llm
	}
}

// WithLLMTimeout overrides DefaultLLMTimeout
func WithLLMTimeout(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.llmTimeout = d
	}
}

// WithRenderer replaces the default document renderer
func WithRenderer(r *document.Renderer) Option {
	return func(uc *UseCase) {
		uc.renderer = r
	}
}

// WithStorageBaseURL overrides DefaultStorageBaseURL, e.g. for a storage emulator
func WithStorageBaseURL(base string) Option {
	return func(uc *UseCase) {
		uc.storageBaseURL = base
	}
}

// WithNow sets the clock used for object keys and document timestamps
func WithNow(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new report UseCase instance
func New(
	repo repository.Repository,
	storage adapter.Storage,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:           repo,
		storage:        storage,
		llmTimeout:     DefaultLLMTimeout,
		renderer:       document.New(),
		storageBaseURL: DefaultStorageBaseURL,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.composer = NewComposer(uc.llm,
		WithTimeout(uc.llmTimeout),
		WithMissingMarker(uc.renderer.Labels().Missing),
	)

	return uc
}
