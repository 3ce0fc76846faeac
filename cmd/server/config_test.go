package main

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/krypto"
)

func requiredEnvForTest() map[string]string {
	return map[string]string{
		"SESSION_SIGNING_KEY": "2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d",
		"EMAIL_FROM":          "no-reply@example.com",
	}
}

func newConfig(mf func(*config)) config {
	c := defaultConfig()
	c.session.signingKey = must(krypto.ParseKey("2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d"))
	c.email.from = must(email.ParseAddress("no-reply@example.com"))

	if mf != nil {
		mf(&c)
	}
	return c
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("ok, uses defaults for non-required env variables", func(t *testing.T) {
		// set the required env variables.
		for key, val := range requiredEnvForTest() {
			envForTest(t, key, val)
		}

		want := newConfig(nil)
		got, err := configFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("got\n%+v\nwant\n%+v", got, want)
		}
	})

	valid := map[string]struct {
		key string
		val string
		mf  func(*config) // modify default config to create wanted config.
	}{
		"ok, non-default HTTP_ADDR": {
			key: "HTTP_ADDR", val: "localhost:8080", mf: func(c *config) { c.http.addr = "localhost:8080" },
		},
		"ok, non-default HTTP_READ_TIMEOUT": {
			key: "HTTP_READ_TIMEOUT", val: "101ms", mf: func(c *config) { c.http.readTimeout = 101 * time.Millisecond },
		},
		"ok, non-default HTTP_WRITE_TIMEOUT": {
			key: "HTTP_WRITE_TIMEOUT", val: "202ms", mf: func(c *config) { c.http.writeTimeout = 202 * time.Millisecond },
		},
		"ok, non-default HTTP_IDLE_TIMEOUT": {
			key: "HTTP_IDLE_TIMEOUT", val: "303ms", mf: func(c *config) { c.http.idleTimeout = 303 * time.Millisecond },
		},
		"ok, non-default HTTP_SHUTDOWN_TIMEOUT": {
			key: "HTTP_SHUTDOWN_TIMEOUT", val: "404ms", mf: func(c *config) { c.http.shutdownTimeout = 404 * time.Millisecond },
		},
		"ok, non-default DB_FILENAME": {
			key: "DB_FILENAME", val: "test.db", mf: func(c *config) { c.db.file = "test.db" },
		},
		"ok, non-default DB_MIGRATE": {
			key: "DB_MIGRATE", val: "false", mf: func(c *config) { c.db.migrate = false },
		},
		"ok, other SESSION_SIGNING_KEY": {
			key: "SESSION_SIGNING_KEY",
			val: "90303dfed7994260ea4817a5ca8a392915cd401115b2f97495dadfcbcd14adbf",
			mf: func(c *config) {
				c.session.signingKey = must(krypto.ParseKey("90303dfed7994260ea4817a5ca8a392915cd401115b2f97495dadfcbcd14adbf"))
			},
		},
		"ok, non-default SESSION_TTL": {
			key: "SESSION_TTL", val: "51m", mf: func(c *config) { c.session.ttl = 51 * time.Minute },
		},
		"ok, non-default SESSION_ISSUER": {
			key: "SESSION_ISSUER", val: "other-issuer", mf: func(c *config) { c.session.issuer = "other-issuer" },
		},
		"ok, non-default ACCOUNT_WORKER_TIMEOUT": {
			key: "ACCOUNT_WORKER_TIMEOUT", val: "42s", mf: func(c *config) { c.account.workerTimeout = 42 * time.Second },
		},
		"ok, non-default ACCOUNT_TOKEN_EXPIRY": {
			key: "ACCOUNT_TOKEN_EXPIRY", val: "51m", mf: func(c *config) { c.account.tokenExpiry = 51 * time.Minute },
		},
		"ok, non-default EMAIL_DRIVER": {
			key: "EMAIL_DRIVER",
			val: "postmark",
			mf: func(c *config) {
				c.email.driver = "postmark"
			},
		},
		"ok, other EMAIL_FROM": {
			key: "EMAIL_FROM",
			val: "test@example.com",
			mf: func(c *config) {
				c.email.from = must(email.ParseAddress("test@example.com"))
			},
		},
		"ok, non-default POSTMARK_API_URL": {
			key: "POSTMARK_API_URL",
			val: "https://example.com",
			mf: func(c *config) {
				c.email.postmark.APIURL = must(url.Parse("https://example.com"))
			},
		},
		"ok, other POSTMARK_MESSAGE_STREAM": {
			key: "POSTMARK_MESSAGE_STREAM",
			val: "other_stream",
			mf: func(c *config) {
				c.email.postmark.MessageStream = "other_stream"
			},
		},
		"ok, other POSTMARK_SERVER_TOKEN": {
			key: "POSTMARK_SERVER_TOKEN",
			val: "testToken",
			mf: func(c *config) {
				c.email.postmark.ServerToken = krypto.NewSecret("testToken")
			},
		},
	}

	for name, tc := range valid {
		t.Run(name, func(t *testing.T) {
			// set the required env variables.
			for key, val := range requiredEnvForTest() {
				envForTest(t, key, val)
			}

			// set the tested env variable
			envForTest(t, tc.key, tc.val)

			want := newConfig(tc.mf)
			got, err := configFromEnv()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("got\n%+v\nwant\n%+v", got, want)
			}
		})
	}

	invalid := map[string]struct {
		key string
		val string
	}{
		"fail, negative HTTP_READ_TIMEOUT":      {"HTTP_READ_TIMEOUT", "-1ms"},
		"fail, negative HTTP_WRITE_TIMEOUT":     {"HTTP_WRITE_TIMEOUT", "-1ms"},
		"fail, negative HTTP_IDLE_TIMEOUT":      {"HTTP_IDLE_TIMEOUT", "-1ms"},
		"fail, negative HTTP_SHUTDOWN_TIMEOUT":  {"HTTP_SHUTDOWN_TIMEOUT", "-1ms"},
		"fail, empty DB_FILENAME":               {"DB_FILENAME", ""},
		"fail, invalid DB_MIGRATE":              {"DB_MIGRATE", "no!"},
		"fail, invalid SESSION_SIGNING_KEY":     {"SESSION_SIGNING_KEY", "abc"},
		"fail, negative SESSION_TTL":            {"SESSION_TTL", "-1ms"},
		"fail, negative ACCOUNT_WORKER_TIMEOUT": {"ACCOUNT_WORKER_TIMEOUT", "-1ms"},
		"fail, negative ACCOUNT_TOKEN_EXPIRY":   {"ACCOUNT_TOKEN_EXPIRY", "-1ms"},
		"fail, unknown EMAIL_DRIVER":            {"EMAIL_DRIVER", "pigeon"},
		"fail, invalid EMAIL_FROM":              {"EMAIL_FROM", "@@"},
		"fail, invalid POSTMARK_API_URL":        {"POSTMARK_API_URL", "not-a-url"},
	}

	for name, tc := range invalid {
		t.Run(name, func(t *testing.T) {
			// set the required env variables.
			for key, val := range requiredEnvForTest() {
				envForTest(t, key, val)
			}

			// set the tested env variable.
			envForTest(t, tc.key, tc.val)

			_, err := configFromEnv()
			if err == nil {
				t.Fatal("expected error, got <nil>")
			}

			// Check that the error message contains the invalid env variable.
			// These errors are immediately logged, so I'm fine comparing on a string level.
			msg := err.Error()
			if !strings.Contains(msg, tc.key) {
				t.Errorf("expected error message to mention %s, got %s", tc.key, msg)
			}
		})
	}

	for key := range requiredEnvForTest() {
		t.Run(fmt.Sprintf("fail, env variable %s not set", key), func(t *testing.T) {
			// set all required env variables except the one being tested.
			for k, val := range requiredEnvForTest() {
				if k != key {
					envForTest(t, k, val)
				}
			}

			_, err := configFromEnv()
			if err == nil {
				t.Fatal("expected error, got <nil>")
			}

			// Check that the error message contains the missing env variable.
			msg := err.Error()
			if !strings.Contains(msg, key) {
				t.Errorf("expected error message to mention %s, got %s", key, msg)
			}
		})
	}

	t.Run("fail, multiple invalid env variables", func(t *testing.T) {
		// set the required env variables.
		for key, val := range requiredEnvForTest() {
			envForTest(t, key, val)
		}

		// set two invalid env variables.
		envForTest(t, "HTTP_READ_TIMEOUT", "-1ms")
		envForTest(t, "HTTP_WRITE_TIMEOUT", "-1ms")

		_, err := configFromEnv()
		if err == nil {
			t.Error("expected error, got <nil>")
		}

		// Check that the error message contains both invalid env variables.
		msg := err.Error()
		for _, key := range []string{"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT"} {
			if !strings.Contains(msg, key) {
				t.Errorf("expected error message to mention %s, got %s", key, msg)
			}
		}
	})
}

// envForTest sets an environment variable for a test and unsets it when the test is done.
func envForTest(t *testing.T, key, val string) {
	t.Helper()

	t.Cleanup(func() {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset env var %s: %v", key, err)
		}
	})

	if err := os.Setenv(key, val); err != nil {
		t.Fatalf("failed to set env var %s: %v", key, err)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
