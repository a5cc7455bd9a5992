package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/messaging"
)

// InjectionRetry delivers a message, and if the first attempt finds nobody
// listening, injects the collaborator once and tries exactly once more.
type InjectionRetry struct {
	// Inject makes the missing listener present.
	Inject func(ctx context.Context) error
	// Retryable decides whether a failed delivery warrants injection.
	// Defaults to errors.Is(err, messaging.ErrNoListener).
	Retryable func(err error) bool
	Logger    hclog.Logger
}

// Do runs deliver at most twice with at most one injection in between.
func (r InjectionRetry) Do(ctx context.Context, deliver func(ctx context.Context) error) error {
	logger := r.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	retryable := r.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return errors.Is(err, messaging.ErrNoListener) }
	}

	err := deliver(ctx)
	if err == nil || !retryable(err) {
		return err
	}

	logger.Debug("delivery found no listener, injecting", "error", err)
	if r.Inject == nil {
		return err
	}
	if err := r.Inject(ctx); err != nil {
		return fmt.Errorf("failed to inject page script: %w", err)
	}

	if err := deliver(ctx); err != nil {
		return fmt.Errorf("delivery failed after injection: %w", err)
	}
	return nil
}
