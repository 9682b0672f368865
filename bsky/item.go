package bsky

import "github.com/bluesky-social/indigo/atproto/syntax"

const (
	ITEM_GRAPH_FOLLOW = syntax.NSID("app.bsky.graph.follow")
)
