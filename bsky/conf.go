package bsky

import (
	"strconv"

	"github.com/birdsync/birdsync/conf"
)

type Conf struct {
	conf.EnvConf
}

func NewConf() *Conf {
	return &Conf{conf.NewEnvConf()}
}

func (c *Conf) Host() string {
	return c.GetEnv(ENV_BSKY_PDS_URL, BSKY_SOCIAL_URL)
}

func (c *Conf) PageSize() int {
	var pageSize int
	var err error
	if pageSize, err = strconv.Atoi(c.GetEnv(ENV_BSKY_PAGE_SIZE, strconv.Itoa(DEFAULT_PAGE_SIZE))); err != nil {
		pageSize = DEFAULT_PAGE_SIZE
	}
	return pageSize
}

func (c *Conf) MaxRetries() int {
	var maxRetries int
	var err error
	if maxRetries, err = strconv.Atoi(c.GetEnv(ENV_BSKY_MAX_RETRY_COUNT, strconv.Itoa(DEFAULT_MAX_RETRIES))); err != nil {
		maxRetries = DEFAULT_MAX_RETRIES
	}
	return maxRetries
}

// Credentials identifies the account issuing follows. Never persisted and
// never logged.
type Credentials struct {
	Identifier string
	Password   string
}

// CredentialsFromEnv reads BLUESKY_LOGIN / BLUESKY_PASSWORD once. ok is
// false when either is unset so a caller can prompt instead.
func CredentialsFromEnv() (Credentials, bool) {
	creds := Credentials{
		Identifier: conf.GetEnv(ENV_BLUESKY_LOGIN, ""),
		Password:   conf.GetEnv(ENV_BLUESKY_PASSWORD, ""),
	}
	return creds, creds.Identifier != "" && creds.Password != ""
}
