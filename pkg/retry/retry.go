// Package retry runs operations with a bounded number of attempts and a
// linearly growing wait between them.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Linear is a backoff.BackOff whose n-th wait is n × Base.
type Linear struct {
	Base time.Duration
	n    int64
}

// NextBackOff implements backoff.BackOff.
func (l *Linear) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.Base
}

// Reset implements backoff.BackOff.
func (l *Linear) Reset() { l.n = 0 }

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	Attempts int
	Base     time.Duration
	// Notify, when set, is called after every failed attempt that will be
	// retried, with the wait before the next one.
	Notify func(err error, wait time.Duration)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	retries := p.Attempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(&Linear{Base: p.Base}, uint64(retries)), ctx)
}

// Do runs op until it succeeds, returns a Permanent error, the attempts are
// used up or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	return backoff.RetryNotify(func() error { return op(ctx) }, p.backOff(ctx), p.Notify)
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	return backoff.RetryNotifyWithData(func() (T, error) { return op(ctx) }, p.backOff(ctx), p.Notify)
}
