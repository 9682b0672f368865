// Package bsky wraps the ATProto XRPC surface used to migrate follows:
// session auth, actor search, and app.bsky.graph.follow record creation.
package bsky

import (
	"context"
	"errors"
	"fmt"
	"strings"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/birdsync/birdsync/conf"
)

// ErrMissingCredentials - no identifier/password supplied; fatal before
// any network call.
var ErrMissingCredentials = errors.New("bsky: missing identifier or password")

// ClientConf is injected once at construction; the client never reads
// ambient state afterwards.
type ClientConf struct {
	Host        string
	Credentials Credentials
}

type Client struct {
	atproto   *xrpc.Client
	conf      *Conf
	session   *comatproto.ServerCreateSession_Output
	log       *conf.Log
	rateLimit *RateLimitHandler
}

// NewClient authenticates against the PDS and holds the session for the
// lifetime of the run. Auth failure is fatal for the whole batch.
func NewClient(ctx context.Context, clientConf ClientConf) (*Client, error) {
	var err error
	log := conf.NewLog()
	cfg := NewConf()

	host := clientConf.Host
	if strings.TrimSpace(host) == "" {
		host = cfg.Host()
	}

	client := &xrpc.Client{
		Host:   host,
		Client: NewHTTPClient(),
	}

	creds := clientConf.Credentials
	if strings.TrimSpace(creds.Identifier) == "" || strings.TrimSpace(creds.Password) == "" {
		log.WithErrorMsg(ErrMissingCredentials, "Error authenticating bsky client")
		return nil, ErrMissingCredentials
	}

	var session *comatproto.ServerCreateSession_Output
	if session, err = comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: creds.Identifier,
		Password:   creds.Password,
	}); err != nil {
		log.WithErrorMsg(err, "Error authenticating atproto client", "host", host)
		return nil, fmt.Errorf("bsky: creating session: %w", err)
	}

	// set auth context
	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}

	var rateLimit *RateLimitHandler
	if rateLimit, err = NewRateLimitHandler(ctx, client); err != nil {
		return nil, err
	}

	return &Client{
		atproto:   client,
		conf:      cfg,
		session:   session,
		log:       log,
		rateLimit: rateLimit,
	}, nil
}

// Did is the authenticated actor's DID.
func (c *Client) Did() string {
	return c.session.Did
}

// Handle is the authenticated actor's handle.
func (c *Client) Handle() string {
	return c.session.Handle
}
