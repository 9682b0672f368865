package bsky

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bluesky-social/indigo/xrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	opName = "test"
)

func TestRateLimit(t *testing.T) {
	t.Run("retry once deadline", retryOnceDeadlineTest)
	t.Run("retry once backoff", retryOnceBackoffTest)
	t.Run("max retries set to MAX_RETRIES by default", maxRetriesTest)
	t.Run("max retries exceeded", maxRetriesExceededTest)
	t.Run("retry context cancelled", retryContextCancelledTest)
	t.Run("non rate-limit error passes through", passThroughTest)
	t.Run("op=read retry upto MAX_WAIT if MAX_RETRIES = 0 without deadline", func(t *testing.T) {
		exponentialBackoffTest(t, ReadOperation)
	})
	t.Run("op=write retry upto MAX_RETRIES without deadline", func(t *testing.T) {
		exponentialBackoffWithRetryMaxTest(t, WriteOperation)
	})
}

func retryOnceDeadlineTest(t *testing.T) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	var attempt int
	reset := time.Now().UTC()
	err = handler.WithRetry(context.Background(), ReadOperation, opName, func() error {
		attempt++
		reset = reset.Add(time.Duration(attempt) * time.Millisecond)
		if attempt <= 1 {
			return &xrpc.Error{
				StatusCode: http.StatusTooManyRequests,
				Ratelimit: &xrpc.RatelimitInfo{
					// ratelimit-reset deadline
					Reset: reset,
				},
			}
		}
		return nil
	})
	assert.Nil(t, err)
}

func retryOnceBackoffTest(t *testing.T) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	handler.readBaseWaitTime = time.Millisecond
	var attempt int
	err = handler.WithRetry(context.Background(), ReadOperation, opName, func() error {
		attempt++
		if attempt <= 1 {
			return &xrpc.Error{
				StatusCode: http.StatusTooManyRequests,
			}
		}
		return nil
	})
	assert.Nil(t, err)
}

func maxRetriesTest(t *testing.T) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	conf := NewConf()
	assert.Equal(t, conf.MaxRetries(), handler.maxRetries)
	assert.Equal(t, DEFAULT_MAX_RETRIES, handler.maxRetries)
}

func maxRetriesExceededTest(t *testing.T) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	handler.maxRetries = 2
	reset := time.Now().UTC()
	attempt := 0
	err = handler.WithRetry(context.Background(), ReadOperation, opName, func() error {
		attempt++
		reset = reset.Add(time.Duration(attempt) * time.Millisecond)
		return &xrpc.Error{
			StatusCode: http.StatusTooManyRequests,
			Ratelimit: &xrpc.RatelimitInfo{
				// ratelimit-reset deadline
				Reset: reset,
			},
		}
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempt)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), fmt.Sprintf("%s op: %s failed after 2 retries", ReadOperation, opName))
}

func retryContextCancelledTest(t *testing.T) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	attempt := 0
	err = handler.WithRetry(ctx, ReadOperation, opName, func() error {
		attempt++
		return &xrpc.Error{
			StatusCode: http.StatusTooManyRequests,
			Ratelimit: &xrpc.RatelimitInfo{
				// ratelimit-reset deadline
				Reset: time.Now().UTC().Add(time.Second),
			},
		}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempt)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func passThroughTest(t *testing.T) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	attempt := 0
	wantErr := &xrpc.Error{StatusCode: http.StatusBadRequest}
	err = handler.WithRetry(context.Background(), WriteOperation, opName, func() error {
		attempt++
		return wantErr
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempt)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func exponentialBackoffTest(t *testing.T, op OperationType) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	// disable max retries
	handler.maxRetries = 0
	handler.maxWaitTime = 5 * time.Millisecond
	handler.readBaseWaitTime = time.Millisecond
	handler.writeBaseWaitTime = 2 * time.Millisecond
	err = handler.WithRetry(context.Background(), op, opName, func() error {
		return &xrpc.Error{
			StatusCode: http.StatusTooManyRequests,
		}
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), fmt.Sprintf("%s op: %s failed after 5ms", op, opName))
}

func exponentialBackoffWithRetryMaxTest(t *testing.T, op OperationType) {
	handler, err := NewRateLimitHandler(context.TODO(), &xrpc.Client{})
	assert.Nil(t, err)
	assert.NotNil(t, handler)
	handler.maxRetries = 5
	handler.maxWaitTime = time.Second
	handler.readBaseWaitTime = time.Millisecond
	handler.writeBaseWaitTime = 2 * time.Millisecond
	err = handler.WithRetry(context.Background(), op, opName, func() error {
		return &xrpc.Error{
			StatusCode: http.StatusTooManyRequests,
		}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%s op: %s failed after 5 retries", op, opName))
}
