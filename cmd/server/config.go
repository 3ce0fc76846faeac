package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/email/postmark"
	"github.com/saaskit/saaskit/internal/krypto"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// dbConfig is the configuration for the SQLite database.
type dbConfig struct {
	file    string
	migrate bool
}

// sessionConfig is the configuration for session tokens.
type sessionConfig struct {
	signingKey krypto.Key
	ttl        time.Duration
	issuer     string
}

// accountConfig is the configuration for the account services.
type accountConfig struct {
	workerTimeout time.Duration
	tokenExpiry   time.Duration
}

// emailConfig is the configuration for outgoing email.
type emailConfig struct {
	driver   string
	from     email.Address
	postmark postmark.Settings
}

// config is the configuration for the server command.
type config struct {
	http    httpConfig
	db      dbConfig
	session sessionConfig
	account accountConfig
	email   emailConfig
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
		},
		db: dbConfig{
			file:    "saaskit.db",
			migrate: true,
		},
		session: sessionConfig{
			ttl:    time.Hour * 24,
			issuer: "saaskit",
		},
		account: accountConfig{
			workerTimeout: time.Second * 10,
			tokenExpiry:   time.Hour,
		},
		email: emailConfig{
			driver: "log",
			postmark: postmark.Settings{
				APIURL:        mustURL("https://api.postmarkapp.com/email"),
				MessageStream: "outbound",
			},
		},
	}
}

// requiredEnv are the environment variables that have no usable default.
var requiredEnv = []string{
	"SESSION_SIGNING_KEY",
	"EMAIL_FROM",
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"DB_FILENAME": func(v string, c *config) error {
		if v == "" {
			return errors.New("empty filename")
		}
		c.db.file = v
		return nil
	},
	"DB_MIGRATE": func(v string, c *config) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.db.migrate = b
		return nil
	},
	"SESSION_SIGNING_KEY": func(v string, c *config) error {
		key, err := krypto.ParseKey(v)
		if err != nil {
			return err
		}
		c.session.signingKey = key
		return nil
	},
	"SESSION_TTL": func(v string, c *config) error {
		return confDuration(v, &c.session.ttl, 0, math.MaxInt64)
	},
	"SESSION_ISSUER": func(v string, c *config) error {
		c.session.issuer = v
		return nil
	},
	"ACCOUNT_WORKER_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.account.workerTimeout, 0, math.MaxInt64)
	},
	"ACCOUNT_TOKEN_EXPIRY": func(v string, c *config) error {
		return confDuration(v, &c.account.tokenExpiry, 0, math.MaxInt64)
	},
	"EMAIL_DRIVER": func(v string, c *config) error {
		if v != "log" && v != "memory" && v != "postmark" {
			return fmt.Errorf("unknown email driver %q", v)
		}
		c.email.driver = v
		return nil
	},
	"EMAIL_FROM": func(v string, c *config) error {
		from, err := email.ParseAddress(v)
		if err != nil {
			return err
		}
		c.email.from = from
		return nil
	},
	"POSTMARK_API_URL": func(v string, c *config) error {
		u, err := url.Parse(v)
		if err != nil {
			return err
		}
		if u.Host == "" {
			return fmt.Errorf("no host in url %q", v)
		}
		c.email.postmark.APIURL = u
		return nil
	},
	"POSTMARK_MESSAGE_STREAM": func(v string, c *config) error {
		c.email.postmark.MessageStream = v
		return nil
	},
	"POSTMARK_SERVER_TOKEN": func(v string, c *config) error {
		c.email.postmark.ServerToken = krypto.NewSecret(v)
		return nil
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs error

	for _, key := range requiredEnv {
		if _, ok := os.LookupEnv(key); !ok {
			errs = errors.Join(errs, fmt.Errorf("missing required env variable %s", key))
		}
	}

	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = errors.Join(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	return c, errs
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}
