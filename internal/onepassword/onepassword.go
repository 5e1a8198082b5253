// Package onepassword reads secrets from the 1Password CLI.
package onepassword

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cristianhs/one-on-one/internal/errors"
)

// envToken bypasses the credential store entirely when set.
const envToken = "SLACK_TOKEN"

const (
	probeTimeout = 10 * time.Second
	readTimeout  = 30 * time.Second
)

// Client shells out to the `op` CLI. Secrets pass through memory only
// and are never written anywhere.
type Client struct {
	logger *log.Logger

	// runner is swappable for tests.
	runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewClient() *Client {
	return &Client{
		logger: log.New(log.Writer(), "[op] ", log.LstdFlags),
		runner: runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Available reports whether the CLI is installed and signed in.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := c.runner(ctx, "op", "account", "list")
	return err == nil
}

// GetSecret reads one field of one item. The environment variable
// SLACK_TOKEN, when present, wins over the credential store so local
// runs and CI can skip the CLI entirely.
func (c *Client) GetSecret(ctx context.Context, itemName, fieldName string) (string, error) {
	if token := strings.TrimSpace(os.Getenv(envToken)); token != "" {
		c.logger.Printf("using token from %s environment variable", envToken)
		return token, nil
	}

	if itemName == "" || fieldName == "" {
		return "", errors.ConfigurationError("1Password item and field names are required")
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	out, err := c.runner(ctx, "op", "item", "get", itemName, "--field", fieldName, "--reveal")
	if err != nil {
		return "", errors.SecretError(fmt.Sprintf("read %s/%s", itemName, fieldName), err)
	}

	secret := strings.TrimSpace(string(out))
	if secret == "" {
		return "", errors.SecretError(fmt.Sprintf("read %s/%s", itemName, fieldName),
			fmt.Errorf("empty field"))
	}
	return secret, nil
}
