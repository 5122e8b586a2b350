// Package backoff provides the retry policy shared by every remote call the
// pipeline makes.
package backoff

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/cinevec/cinevec/internal"
)

var log = internal.GetLogger()

// Policy retries an arbitrary fallible operation up to MaxAttempts times in
// total, sleeping exponentially longer between attempts. The same policy is
// composed into the embedding client and the upload coordinator rather than
// each carrying its own retry loop.
type Policy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
}

// NewPolicy creates a Policy with the given total attempt count and backoff
// base delay.
func NewPolicy(maxAttempts uint, baseDelay time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or ctx is
// done. Each retry is logged with the attempt count and error detail. The
// returned error is the last error fn produced.
func (p Policy) Do(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(p.MaxAttempts),
		retry.Delay(p.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("retrying %s attempt #%d: %s", operation, n+1, err)
		}),
	)
}
