package bsky

const (
	ENV_BSKY_PDS_URL         = "BSKY_PDS_URL"
	ENV_BLUESKY_LOGIN        = "BLUESKY_LOGIN"
	ENV_BLUESKY_PASSWORD     = "BLUESKY_PASSWORD"
	ENV_BSKY_PAGE_SIZE       = "BSKY_PAGE_SIZE"
	ENV_BSKY_MAX_RETRY_COUNT = "BSKY_MAX_RETRY_COUNT"

	// defaults
	BSKY_SOCIAL_URL     = "https://bsky.social"
	DEFAULT_PAGE_SIZE   = 100
	DEFAULT_MAX_RETRIES = 3
)
