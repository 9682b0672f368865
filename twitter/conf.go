package twitter

import (
	"strconv"
	"time"

	"github.com/birdsync/birdsync/conf"
)

type Conf struct {
	conf.EnvConf
}

func NewConf() *Conf {
	return &Conf{conf.NewEnvConf()}
}

// IntentURL is the public profile URL template keyed by account ID.
func (c *Conf) IntentURL() string {
	return c.GetEnv(ENV_TWITTER_INTENT_URL, DEFAULT_INTENT_URL)
}

func (c *Conf) MaxRetries() int {
	var maxRetries int
	var err error
	if maxRetries, err = strconv.Atoi(c.GetEnv(ENV_TWITTER_MAX_RETRY_COUNT, strconv.Itoa(DEFAULT_MAX_RETRIES))); err != nil {
		maxRetries = DEFAULT_MAX_RETRIES
	}
	return maxRetries
}

func (c *Conf) HTTPTimeout() time.Duration {
	var timeout time.Duration
	var err error
	if timeout, err = time.ParseDuration(c.GetEnv(ENV_TWITTER_HTTP_TIMEOUT, DEFAULT_HTTP_TIMEOUT)); err != nil {
		timeout, _ = time.ParseDuration(DEFAULT_HTTP_TIMEOUT)
	}
	return timeout
}
