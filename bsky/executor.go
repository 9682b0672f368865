package bsky

import (
	"context"
	"errors"
	"net/http"

	"github.com/bluesky-social/indigo/xrpc"

	"github.com/birdsync/birdsync/cache"
	log "github.com/birdsync/birdsync/conf"
	"github.com/birdsync/birdsync/twitter"
)

type ResultStatus string

const (
	StatusFollowed           ResultStatus = "followed"
	StatusAlreadyFollowing   ResultStatus = "already_following"
	StatusHandleNotOnNetwork ResultStatus = "handle_not_on_network"
	StatusAuthError          ResultStatus = "auth_error"
	StatusRateLimited        ResultStatus = "rate_limited"
	StatusUnknownError       ResultStatus = "unknown_error"
)

// FollowResult is the terminal outcome of one resolved account.
type FollowResult struct {
	AccountID  string
	Handle     string
	Actor      *Actor
	Status     ResultStatus
	Diagnostic string
}

// GraphClient is the slice of Client the executor needs; narrow so tests
// can fake the remote graph.
type GraphClient interface {
	Did() string
	SearchActor(ctx context.Context, handle string) (*Actor, error)
	FollowedDids(ctx context.Context) (map[string]string, error)
	Follow(ctx context.Context, did string) (string, error)
}

// Executor issues follow actions for resolved accounts, one at a time.
// Per-account failures are recorded, never fatal; each successful follow
// mutates the remote social graph, so an already-followed DID is never
// re-sent.
type Executor struct {
	client   GraphClient
	log      *log.Log
	actors   *cache.Store[Actor]
	followed map[string]string
	dryRun   bool
}

// NewExecutor snapshots the authenticated account's existing follows up
// front so AlreadyFollowing is decided locally. actors may be nil to
// disable the lookup cache.
func NewExecutor(ctx context.Context, client GraphClient, actors *cache.Store[Actor]) (*Executor, error) {
	followed, err := client.FollowedDids(ctx)
	if err != nil {
		return nil, err
	}
	return &Executor{
		client:   client,
		log:      log.NewLog(),
		actors:   actors,
		followed: followed,
	}, nil
}

// WithDryRun skips the follow-creation call while still reporting what
// would happen.
func (e *Executor) WithDryRun(dryRun bool) *Executor {
	e.dryRun = dryRun
	return e
}

// Execute maps the resolved source handle to a target actor and follows
// it. Input order is the caller's concern; one result per call.
func (e *Executor) Execute(ctx context.Context, resolved twitter.ResolvedAccount) FollowResult {
	result := FollowResult{
		AccountID: resolved.Record.AccountID,
		Handle:    resolved.Handle,
	}

	actor, err := e.lookupActor(ctx, resolved.Handle)
	if err != nil {
		result.Status = classify(err)
		result.Diagnostic = err.Error()
		return result
	}
	if actor == nil {
		result.Status = StatusHandleNotOnNetwork
		return result
	}
	result.Actor = actor

	if _, ok := e.followed[actor.Did]; ok || actor.Following != "" {
		result.Status = StatusAlreadyFollowing
		return result
	}

	if e.dryRun {
		result.Status = StatusFollowed
		result.Diagnostic = "dry-run: follow not created"
		return result
	}

	uri, err := e.client.Follow(ctx, actor.Did)
	if err != nil {
		result.Status = classify(err)
		result.Diagnostic = err.Error()
		return result
	}
	e.followed[actor.Did] = uri
	result.Status = StatusFollowed
	return result
}

func (e *Executor) lookupActor(ctx context.Context, handle string) (*Actor, error) {
	if e.actors != nil {
		if cached, ok := e.actors.Get(handle); ok {
			return &cached, nil
		}
	}
	actor, err := e.client.SearchActor(ctx, handle)
	if err != nil || actor == nil {
		return actor, err
	}
	if e.actors != nil {
		if err := e.actors.Put(handle, *actor); err != nil {
			e.log.WithErrorMsg(err, "Error caching actor lookup", "handle", handle)
		}
	}
	return actor, nil
}

func classify(err error) ResultStatus {
	if errors.Is(err, ErrRateLimited) {
		return StatusRateLimited
	}
	var apiErr *xrpc.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return StatusAuthError
		case http.StatusTooManyRequests:
			return StatusRateLimited
		}
	}
	return StatusUnknownError
}
