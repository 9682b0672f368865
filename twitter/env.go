package twitter

const (
	ENV_TWITTER_INTENT_URL      = "TWITTER_INTENT_URL"
	ENV_TWITTER_MAX_RETRY_COUNT = "TWITTER_MAX_RETRY_COUNT"
	ENV_TWITTER_HTTP_TIMEOUT    = "TWITTER_HTTP_TIMEOUT"

	// defaults
	DEFAULT_INTENT_URL   = "https://x.com/intent/user?user_id=%s"
	DEFAULT_MAX_RETRIES  = 3
	DEFAULT_HTTP_TIMEOUT = "10s"
)
