// Package slack resolves a colleague's handle to their directory
// profile and downloads the profile photo.
package slack

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/cristianhs/one-on-one/internal/errors"
)

// Photo size fallback order when the configured size is unavailable.
var fallbackSizes = []string{"512", "192", "72", "original"}

// Client wraps the workspace directory API. A nil Client is valid and
// always reports "no photo", which keeps the pipeline on template
// icons when no token is available.
type Client struct {
	api       *slackapi.Client
	http      *http.Client
	photoSize string
	logger    *log.Logger
}

// NewClient builds a directory client for the given API token.
func NewClient(token, photoSize string) *Client {
	if photoSize == "" {
		photoSize = "512"
	}
	return &Client{
		api:       slackapi.New(token),
		http:      &http.Client{Timeout: 30 * time.Second},
		photoSize: photoSize,
		logger:    log.New(log.Writer(), "[slack] ", log.LstdFlags),
	}
}

// FetchPhoto looks the handle up in the workspace directory and
// returns the profile photo bytes. A missing user or a profile without
// a photo returns (nil, nil): both are expected conditions the caller
// degrades from, not failures.
func (c *Client) FetchPhoto(ctx context.Context, handle string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	user, err := c.findUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	if user == nil {
		c.logger.Printf("user @%s not found in workspace", handle)
		return nil, nil
	}

	url := c.photoURL(user)
	if url == "" {
		c.logger.Printf("user @%s has no profile photo", handle)
		return nil, nil
	}

	return c.download(ctx, url)
}

func (c *Client) findUser(ctx context.Context, handle string) (*slackapi.User, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, errors.NetworkError("list workspace users", err)
	}

	lower := strings.ToLower(handle)
	for i := range users {
		u := &users[i]
		if u.Name == handle ||
			u.Profile.DisplayName == handle ||
			strings.ToLower(u.Name) == lower ||
			strings.ToLower(u.Profile.DisplayName) == lower ||
			strings.ToLower(u.Profile.RealNameNormalized) == lower {
			c.logger.Printf("found @%s: %s", handle, u.Profile.RealName)
			return u, nil
		}
	}
	return nil, nil
}

// photoURL picks the configured rendition with graceful fallback to
// whatever size the profile carries.
func (c *Client) photoURL(user *slackapi.User) string {
	if url := imageBySize(&user.Profile, c.photoSize); url != "" {
		return url
	}
	for _, size := range fallbackSizes {
		if url := imageBySize(&user.Profile, size); url != "" {
			c.logger.Printf("photo size %s unavailable, using %s", c.photoSize, size)
			return url
		}
	}
	return ""
}

func imageBySize(p *slackapi.UserProfile, size string) string {
	switch size {
	case "24":
		return p.Image24
	case "32":
		return p.Image32
	case "48":
		return p.Image48
	case "72":
		return p.Image72
	case "192":
		return p.Image192
	case "512":
		return p.Image512
	case "original":
		return p.ImageOriginal
	}
	return ""
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NetworkError("build photo request", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NetworkError("download profile photo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NetworkError("download profile photo",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}
