// Package retry runs read-side operations with capped exponential backoff.
// Only transient failures are retried.
package retry

import (
	"context"
	"time"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/recordstore"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Attempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// IsTransient reports whether err is worth another attempt.
func IsTransient(err error) bool {
	return apperrors.HasCode(err, apperrors.CodeTransient) ||
		recordstore.IsCode(err, recordstore.CodeTransient)
}

// Do calls op until it succeeds, fails permanently, the attempts run out or
// ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.Attempts-1)), ctx)

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
