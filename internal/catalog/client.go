package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/gabrielfornes/memex/internal/logging"
	"github.com/gabrielfornes/memex/internal/query"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 32 << 20

// Options configures a Client.
type Options struct {
	BaseURL  string // e.g. http://localhost:8080
	Timeout  time.Duration
	RetryMax int
	Log      *logrus.Entry
}

// Client reads entries and tags from the catalog service.
type Client struct {
	base *url.URL
	http *retryablehttp.Client
	log  *logrus.Entry
}

// New creates a Client for the service at opts.BaseURL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("catalog server address cannot be empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog server address: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", base.Scheme)
	}

	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logging.Log)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = logging.Leveled(log.WithField("component", "http"))
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}

	return &Client{base: base, http: rc, log: log}, nil
}

// BaseURL returns the service address requests are resolved against.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// URL resolves a descriptor against the service address.
func (c *Client) URL(d query.Descriptor) string {
	return c.base.String() + d.String()
}

// ListEntries fetches the entries selected by d, in service order.
func (c *Client) ListEntries(ctx context.Context, d query.Descriptor) ([]CacheEntry, error) {
	target := c.URL(d)
	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, &DecodeError{URL: target, Err: fmt.Errorf("expected a JSON array of entries")}
	}

	var entries []CacheEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &DecodeError{URL: target, Err: err}
	}
	if entries == nil {
		entries = []CacheEntry{}
	}
	return entries, nil
}

// ListTags fetches the tag listing selected by d.
func (c *Client) ListTags(ctx context.Context, d query.Descriptor) ([]string, error) {
	target := c.URL(d)
	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{URL: target, Err: fmt.Errorf("invalid JSON")}
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, &DecodeError{URL: target, Err: fmt.Errorf("expected a JSON array of tags")}
	}

	items := res.Array()
	tags := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, &DecodeError{URL: target, Err: fmt.Errorf("tag %d is %s, not a string", i, item.Type)}
		}
		tags = append(tags, item.String())
	}
	return tags, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "memex/1.0")

	c.log.WithField("url", target).Debug("fetching")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
