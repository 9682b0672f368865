// Package run wires the three pipeline stages together: archive records
// in, resolutions and follow results out, strictly in order with one
// network call in flight at a time.
package run

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/birdsync/birdsync/archive"
	"github.com/birdsync/birdsync/bsky"
	"github.com/birdsync/birdsync/cache"
	log "github.com/birdsync/birdsync/conf"
	"github.com/birdsync/birdsync/twitter"
)

// Resolver is stage two: account ID → current source handle.
type Resolver interface {
	Resolve(ctx context.Context, record archive.FollowRecord) twitter.ResolvedAccount
}

// Executor is stage three: resolved handle → follow outcome.
type Executor interface {
	Execute(ctx context.Context, resolved twitter.ResolvedAccount) bsky.FollowResult
}

// Result is the terminal entry for one follow record. Exactly one per
// record per run; FollowStatus is empty when resolution failed and no
// follow was attempted.
type Result struct {
	AccountID    string
	Handle       string
	Resolution   twitter.Status
	FollowStatus bsky.ResultStatus
	Actor        *bsky.Actor
	Diagnostic   string
}

// Progress streams each terminal result as it lands so a shell (CLI or
// GUI) can render per-account updates mid-batch.
type Progress func(Result)

type Pipeline struct {
	resolver Resolver
	executor Executor
	handles  *cache.Store[string]
	log      *log.Log
	metrics  *PipelineMetrics
	progress Progress
}

func NewPipeline(ctx context.Context, resolver Resolver, executor Executor) (*Pipeline, error) {
	metrics, err := NewPipelineMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		resolver: resolver,
		executor: executor,
		log:      log.NewLog(),
		metrics:  metrics,
	}, nil
}

// WithHandleCache reuses prior id → handle resolutions across runs.
func (p *Pipeline) WithHandleCache(handles *cache.Store[string]) *Pipeline {
	p.handles = handles
	return p
}

func (p *Pipeline) WithProgress(progress Progress) *Pipeline {
	p.progress = progress
	return p
}

// Run processes the batch sequentially. Cancellation is cooperative and
// coarse: the context is checked between accounts, and every result
// collected so far is returned alongside the context error.
func (p *Pipeline) Run(ctx context.Context, records []archive.FollowRecord) ([]Result, error) {
	p.metrics.batchSize.Record(ctx, int64(len(records)))
	results := make([]Result, 0, len(records))

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		resolved := p.resolve(ctx, record)
		result := Result{
			AccountID:  record.AccountID,
			Handle:     resolved.Handle,
			Resolution: resolved.Status,
			Diagnostic: resolved.Diagnostic,
		}

		if resolved.Status != twitter.StatusResolved {
			p.metrics.resolutionFailures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("status", string(resolved.Status)),
			))
			p.log.With("account-id", record.AccountID, "status", resolved.Status).Info("Skipping unresolved account")
			results = p.record(ctx, results, result)
			continue
		}

		followed := p.executor.Execute(ctx, resolved)
		result.FollowStatus = followed.Status
		result.Actor = followed.Actor
		if followed.Diagnostic != "" {
			result.Diagnostic = followed.Diagnostic
		}
		if followed.Status == bsky.StatusFollowed {
			p.metrics.followsCreated.Add(ctx, 1)
		}
		results = p.record(ctx, results, result)
	}
	return results, nil
}

func (p *Pipeline) resolve(ctx context.Context, record archive.FollowRecord) twitter.ResolvedAccount {
	if p.handles != nil {
		if handle, ok := p.handles.Get(record.AccountID); ok {
			return twitter.ResolvedAccount{
				Record: record,
				Handle: handle,
				Status: twitter.StatusResolved,
			}
		}
	}
	resolved := p.resolver.Resolve(ctx, record)
	if resolved.Status == twitter.StatusResolved && p.handles != nil {
		if err := p.handles.Put(record.AccountID, resolved.Handle); err != nil {
			p.log.WithErrorMsg(err, "Error caching handle resolution", "account-id", record.AccountID)
		}
	}
	return resolved
}

func (p *Pipeline) record(ctx context.Context, results []Result, result Result) []Result {
	p.metrics.accountsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resolution", string(result.Resolution)),
		attribute.String("follow", string(result.FollowStatus)),
	))
	if p.progress != nil {
		p.progress(result)
	}
	return append(results, result)
}
