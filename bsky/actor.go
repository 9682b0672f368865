package bsky

import (
	"context"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
)

// Actor is the target-network account a source handle mapped to.
type Actor struct {
	Did         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"screen_name,omitempty"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`

	// Following is the viewer's existing follow record URI, when any.
	Following string `json:"following,omitempty"`
}

func newActor(view *appbsky.ActorDefs_ProfileView) *Actor {
	actor := &Actor{
		Did:    view.Did,
		Handle: view.Handle,
	}
	if view.DisplayName != nil {
		actor.DisplayName = *view.DisplayName
	}
	if view.Description != nil {
		actor.Description = *view.Description
	}
	if view.Avatar != nil {
		actor.Avatar = *view.Avatar
	}
	if view.Viewer != nil && view.Viewer.Following != nil {
		actor.Following = *view.Viewer.Following
	}
	return actor
}

// SearchActor maps a source-network handle to the closest target actor,
// the way the app's own search box would. Returns nil when nothing
// matches.
func (c *Client) SearchActor(ctx context.Context, handle string) (*Actor, error) {
	var out *appbsky.ActorSearchActors_Output
	err := c.rateLimit.WithRetry(ctx, ReadOperation, "searchActors", func() error {
		var err error
		out, err = appbsky.ActorSearchActors(ctx, c.atproto, "", 1, handle, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(out.Actors) == 0 {
		return nil, nil
	}
	return newActor(out.Actors[0]), nil
}
