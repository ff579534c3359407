package usecase

import (
	"time"

	"github.com/apexfs/firstline/pkg/domain/interfaces"
	"github.com/apexfs/firstline/pkg/domain/model/config"
	"github.com/apexfs/firstline/pkg/service/scoring"
)

// UseCases aggregates all use cases with their shared dependencies
type UseCases struct {
	Registrar *RegistrarUseCase
	Narrative *NarrativeUseCase
	Export    *ExportUseCase
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds the use case layer from a repository and the loaded policy
func New(repo interfaces.Repository, policy *config.Policy, opts ...Option) (*UseCases, error) {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	engine, err := scoring.NewEngine(&policy.Catalog)
	if err != nil {
		return nil, err
	}
	classifier, err := scoring.NewClassifier(&policy.TierTable)
	if err != nil {
		return nil, err
	}

	return &UseCases{
		Registrar: NewRegistrarUseCase(repo, policy, engine, classifier, o.now),
		Narrative: NewNarrativeUseCase(repo),
		Export:    NewExportUseCase(repo),
	}, nil
}
