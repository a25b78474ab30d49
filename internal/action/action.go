// Package action runs mutations in a fixed order: validate the input, run
// the gated write, classify the failure, then invalidate affected views.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
	"github.com/hustlehub/marketplace/internal/pkg/metrics"
	"github.com/hustlehub/marketplace/internal/view"
)

// Mutation describes one write.
type Mutation struct {
	// Name labels logs and metrics, e.g. "createClippingJob".
	Name string
	// Input is validated with struct tags before anything else runs. Nil skips validation.
	Input any
	// Invalidate lists the page paths refreshed after a successful write.
	Invalidate []string
}

// Runner executes mutations.
type Runner struct {
	validate *validator.Validate
	registry view.Registry
}

// NewRunner creates a runner signalling invalidations to registry.
func NewRunner(registry view.Registry) *Runner {
	return &Runner{
		validate: NewValidator(),
		registry: registry,
	}
}

// Run validates m.Input, calls fn and signals invalidation on success.
// fn is expected to run the authorization gate and exactly one write.
// Errors outside the shared taxonomy are logged and returned as upstream failures
// so that store details never reach the caller.
func (r *Runner) Run(ctx context.Context, m Mutation, fn func(ctx context.Context) error) error {
	logger := ctxlog.FromContext(ctx).With("action", m.Name)

	if m.Input != nil {
		if err := r.Validate(m.Input); err != nil {
			metrics.MutationsTotal.WithLabelValues(m.Name, metrics.OutcomeInvalid).Inc()
			return err
		}
	}

	if err := fn(ctx); err != nil {
		outcome := classify(err)
		metrics.MutationsTotal.WithLabelValues(m.Name, outcome).Inc()

		if !domain.IsTaxonomy(err) {
			logger.Error("action failed", "error", err)
			return fmt.Errorf("%s: %w", m.Name, domain.ErrUpstreamFailure)
		}
		logger.Debug("action rejected", "error", err)
		return err
	}

	if len(m.Invalidate) > 0 {
		if err := r.registry.Invalidate(ctx, m.Invalidate...); err != nil {
			logger.Warn("view invalidation failed", "paths", m.Invalidate, "error", err)
		}
	}

	metrics.MutationsTotal.WithLabelValues(m.Name, metrics.OutcomeSuccess).Inc()
	logger.Info("action completed")
	return nil
}

// Validate checks input against its validate tags. Failures wrap both
// domain.ErrValidation and validator.ValidationErrors.
func (r *Runner) Validate(input any) error {
	if err := r.validate.Struct(input); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %w", domain.ErrValidation, ve)
		}
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrNotAuthorized):
		return metrics.OutcomeRejected
	case errors.Is(err, domain.ErrValidation):
		return metrics.OutcomeInvalid
	case domain.IsTaxonomy(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
