package memory

import (
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
)

// ScorePolicy controls admissibility and truncation for one operation.
type ScorePolicy struct {
	MinScore float64 `yaml:"min_score"`
	MaxCount int     `yaml:"max_count"`
}

// Policy holds the per-operation relevance thresholds. The source deployments
// disagreed on these values, so they are configuration rather than constants.
type Policy struct {
	// Search is used by broad memory search (recall over precision)
	Search ScorePolicy `yaml:"search"`

	// Category is used by category search; topical match matters more than
	// exact relevance, so this threshold is the lowest
	Category ScorePolicy `yaml:"category"`

	// Context is used by relevant-context retrieval feeding an agent prompt
	// (precision over recall)
	Context ScorePolicy `yaml:"context"`

	// CategorySampleSize caps how many memories are fetched when building
	// the category index. The index is an approximation over that sample,
	// never an exhaustive count.
	CategorySampleSize int `yaml:"category_sample_size"`
}

// DefaultPolicy returns the thresholds used when no policy file is given
func DefaultPolicy() Policy {
	return Policy{
		Search:             ScorePolicy{MinScore: 0.3, MaxCount: 10},
		Category:           ScorePolicy{MinScore: 0.1, MaxCount: 10},
		Context:            ScorePolicy{MinScore: 0.7, MaxCount: 5},
		CategorySampleSize: 50,
	}
}

// UseCase provides memory operations on top of the remote store. It owns
// response normalization, relevance filtering, category aggregation and the
// update workflow; the store itself is treated as an unreliable collaborator.
type UseCase struct {
	repo       repository.Repository
	policy     Policy
	appContext string
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithPolicy overrides the default relevance policy
func WithPolicy(p Policy) Option {
	return func(uc *UseCase) {
		uc.policy = p
	}
}

// WithAppContext overrides the namespace tag attached to every write
func WithAppContext(tag string) Option {
	return func(uc *UseCase) {
		uc.appContext = tag
	}
}

// New creates a new memory UseCase instance
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:       repo,
		policy:     DefaultPolicy(),
		appContext: model.DefaultAppContext,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AppContext returns the namespace tag this facade writes and trusts
func (uc *UseCase) AppContext() string {
	return uc.appContext
}

// Policy returns the active relevance policy
func (uc *UseCase) Policy() Policy {
	return uc.policy
}
