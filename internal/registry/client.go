package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/konflux-ci/pipeline-migration-tool/internal/cache"
	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
	"github.com/konflux-ci/pipeline-migration-tool/internal/logging"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// Client is a read-only facade over the OCI Distribution API, with every
// manifest/blob/referrers call mediated by a content-addressed cache.
type Client struct {
	httpClient *http.Client
	cache      *cache.Cache
	log        *logging.Logger
	insecure   bool // use http:// instead of https://; for tests only
}

// New creates a registry Client backed by the given disk cache.
func New(c *cache.Cache, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		log:        logging.Default().WithField("component", "registry"),
	}
}

// NewInsecure is like New but talks plain http://, for exercising the
// facade against an httptest.Server in tests.
func NewInsecure(c *cache.Cache, timeout time.Duration) *Client {
	client := New(c, timeout)
	client.insecure = true
	return client
}

// doWithRetry executes an HTTP request with exponential backoff retry on
// transient transport errors (not HTTP error responses).
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// doAuthed issues req, transparently handling a 401 challenge by fetching a
// bearer token from the realm advertised in WWW-Authenticate and retrying
// once with it attached.
func (c *Client) doAuthed(ctx context.Context, req *http.Request, repository string) (*http.Response, error) {
	resp, err := c.doWithRetry(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	token, err := c.getAuthToken(ctx, resp, repository)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	retry := req.Clone(ctx)
	retry.Header.Set("Authorization", "Bearer "+token)
	return c.doWithRetry(retry)
}

func (c *Client) getAuthToken(ctx context.Context, resp *http.Response, repository string) (string, error) {
	authHeader := resp.Header.Get("WWW-Authenticate")
	if authHeader == "" {
		return "", fmt.Errorf("no WWW-Authenticate header in 401 response")
	}

	realm := extractAuthParam(authHeader, "realm")
	service := extractAuthParam(authHeader, "service")
	scope := extractAuthParam(authHeader, "scope")

	if realm == "" {
		return "", fmt.Errorf("no realm found in WWW-Authenticate header: %s", authHeader)
	}

	tokenURL := realm
	var params []string
	if service != "" {
		params = append(params, "service="+service)
	}
	if scope != "" {
		params = append(params, "scope="+scope)
	} else {
		params = append(params, "scope=repository:"+repository+":pull")
	}
	tokenURL += "?" + strings.Join(params, "&")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}

	tokenResp, err := c.doWithRetry(req)
	if err != nil {
		return "", fmt.Errorf("fetching token: %w", err)
	}
	defer tokenResp.Body.Close()

	if tokenResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(tokenResp.Body)
		return "", fmt.Errorf("token request failed with status %d: %s", tokenResp.StatusCode, string(body))
	}

	var tokenData struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&tokenData); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}

	token := tokenData.Token
	if token == "" {
		token = tokenData.AccessToken
	}
	if token == "" {
		return "", fmt.Errorf("no token in response")
	}
	return token, nil
}

var authParamRe = func(param string) *regexp.Regexp {
	return regexp.MustCompile(param + `="([^"]*)"`)
}

func extractAuthParam(header, param string) string {
	matches := authParamRe(param).FindStringSubmatch(header)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func (c *Client) baseURL(ct Container) string {
	scheme := "https"
	if c.insecure {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/v2/%s", scheme, ct.Registry, ct.Repository())
}

func (c *Client) scheme() string {
	if c.insecure {
		return "http"
	}
	return "https"
}
