package bsky

import (
	"context"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/atproto/syntax"
	lexutil "github.com/bluesky-social/indigo/lex/util"
)

// FollowedDids pages through the authenticated repo's existing
// app.bsky.graph.follow records and returns subject DID → record URI.
func (c *Client) FollowedDids(ctx context.Context) (map[string]string, error) {
	followed := map[string]string{}
	var cursor string
	for {
		var out *comatproto.RepoListRecords_Output
		err := c.rateLimit.WithRetry(ctx, ReadOperation, "listRecords", func() error {
			var err error
			out, err = comatproto.RepoListRecords(ctx, c.atproto, ITEM_GRAPH_FOLLOW.String(), cursor, int64(c.conf.PageSize()), c.session.Did, false)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, record := range out.Records {
			if record.Value == nil {
				continue
			}
			if follow, ok := record.Value.Val.(*appbsky.GraphFollow); ok {
				followed[follow.Subject] = record.Uri
			}
		}
		if out.Cursor == nil || *out.Cursor == "" || *out.Cursor == cursor {
			break
		}
		cursor = *out.Cursor
	}
	return followed, nil
}

// Follow creates the one-directional graph edge from the authenticated
// actor to the subject DID. Irreversible short of a separate unfollow, so
// callers must check the followed set first.
func (c *Client) Follow(ctx context.Context, did string) (string, error) {
	var out *comatproto.RepoCreateRecord_Output
	err := c.rateLimit.WithRetry(ctx, WriteOperation, "createFollow", func() error {
		var err error
		out, err = comatproto.RepoCreateRecord(ctx, c.atproto, &comatproto.RepoCreateRecord_Input{
			Collection: ITEM_GRAPH_FOLLOW.String(),
			Repo:       c.session.Did,
			Record: &lexutil.LexiconTypeDecoder{Val: &appbsky.GraphFollow{
				LexiconTypeID: ITEM_GRAPH_FOLLOW.String(),
				CreatedAt:     syntax.DatetimeNow().String(),
				Subject:       did,
			}},
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return out.Uri, nil
}
