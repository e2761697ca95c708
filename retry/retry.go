// Package retry retries calls to remote dependencies, like a KeyService, with
// exponential backoff.
package retry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/remind101/vault/logger"
)

type BackOffOpts struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

var DefaultBackOffOpts *BackOffOpts = &BackOffOpts{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     1 * time.Second,
	MaxElapsedTime:  5 * time.Second}

var RetryOnAnyError = func(error) bool { return true }

type RetryNotifier func(context.Context, *RetryEvent)

type Retrier struct {
	Name                      string
	backOffOpts               *BackOffOpts
	shouldRetryFunc           func(error) bool
	notifyRetryFuncs          []RetryNotifier
	notifyGaveUpFuncs         []RetryNotifier
	notifyShouldNotRetryFuncs []RetryNotifier
}

var retrierNum uint32 = 0

// NewRetrier returns a Retrier that retries while shouldRetryFunc returns
// true, until the backoff gives up.
func NewRetrier(name string,
	backOffOpts *BackOffOpts, shouldRetryFunc func(error) bool) *Retrier {

	return &Retrier{
		Name:                      fmt.Sprintf("%s%d", name, atomic.AddUint32(&retrierNum, 1)),
		backOffOpts:               backOffOpts,
		shouldRetryFunc:           shouldRetryFunc,
		notifyRetryFuncs:          []RetryNotifier{logRetry},
		notifyGaveUpFuncs:         []RetryNotifier{logGaveUp},
		notifyShouldNotRetryFuncs: []RetryNotifier{logShouldNotRetry}}
}

// Retry calls f until it succeeds, returns an error that should not be
// retried, the backoff gives up, or ctx is done. The last value and error are
// returned.
func (r *Retrier) Retry(ctx context.Context, f func() (interface{}, error)) (interface{}, error) {
	var val interface{}
	var err error
	var next time.Duration

	numTries := 0
	b := r.newBackOff()
	b.Reset()
	for {
		numTries++
		if val, err = f(); err == nil {
			return val, nil
		}

		if !r.shouldRetryFunc(err) {
			r.notifyShouldNotRetry(ctx, err, numTries)
			return val, err
		}

		if next = b.NextBackOff(); next == backoff.Stop {
			r.notifyGaveUp(ctx, err, numTries)
			return val, err
		}

		t := time.NewTimer(next)
		select {
		case <-ctx.Done():
			t.Stop()
			r.notifyGaveUp(ctx, err, numTries)
			return val, err
		case <-t.C:
		}
		r.notifyRetry(ctx, err, numTries)
	}
}

type RetryEvent struct {
	Retrier  *Retrier
	Err      error
	NumTries int
}

func (r *Retrier) AddNotifyRetry(f RetryNotifier) {
	r.notifyRetryFuncs = append(r.notifyRetryFuncs, f)
}

func (r *Retrier) AddNotifyGaveUp(f RetryNotifier) {
	r.notifyGaveUpFuncs = append(r.notifyGaveUpFuncs, f)
}

func (r *Retrier) AddNotifyShouldNotRetry(f RetryNotifier) {
	r.notifyShouldNotRetryFuncs = append(r.notifyShouldNotRetryFuncs, f)
}

func (r *Retrier) notifyShouldNotRetry(ctx context.Context, err error, numTries int) {
	retryEvent := &RetryEvent{Retrier: r, Err: err, NumTries: numTries}
	for _, notifyNoRetryFunc := range r.notifyShouldNotRetryFuncs {
		notifyNoRetryFunc(ctx, retryEvent)
	}
}

func (r *Retrier) notifyGaveUp(ctx context.Context, err error, numTries int) {
	retryEvent := &RetryEvent{Retrier: r, Err: err, NumTries: numTries}
	for _, notifyGaveUpFunc := range r.notifyGaveUpFuncs {
		notifyGaveUpFunc(ctx, retryEvent)
	}
}

func (r *Retrier) notifyRetry(ctx context.Context, err error, numTries int) {
	retryEvent := &RetryEvent{Retrier: r, Err: err, NumTries: numTries}
	for _, notifyRetryFunc := range r.notifyRetryFuncs {
		notifyRetryFunc(ctx, retryEvent)
	}
}

func logShouldNotRetry(ctx context.Context, re *RetryEvent) {
	logger.Debug(ctx, "error not qualified for retry",
		"retrier", re.Retrier.Name, "error", re.Err)
}

func logRetry(ctx context.Context, re *RetryEvent) {
	logger.Warn(ctx, "retrying",
		"retrier", re.Retrier.Name, "tries", re.NumTries, "error", re.Err)
}

func logGaveUp(ctx context.Context, re *RetryEvent) {
	logger.Error(ctx, "giving up",
		"retrier", re.Retrier.Name, "tries", re.NumTries, "error", re.Err)
}

func (r *Retrier) SetBackOffOpts(b *BackOffOpts) {
	r.backOffOpts = b
}

func (r *Retrier) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.backOffOpts.InitialInterval
	b.MaxInterval = r.backOffOpts.MaxInterval
	b.MaxElapsedTime = r.backOffOpts.MaxElapsedTime
	return b
}
