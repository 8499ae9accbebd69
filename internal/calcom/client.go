// Package calcom is a thin client for the Cal.com v1 REST API.
package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.cal.com/v1"

	apiKeyParam = "apiKey"

	// Log and error body limits.
	maxLogParams = 300
	maxLogBody   = 500
	maxErrorBody = 500
)

// Config holds the account credentials and endpoint.
type Config struct {
	BaseURL  string
	APIKey   string
	Username string
	// Timeout bounds each HTTP call. Zero means no client-side timeout.
	Timeout time.Duration
	// HTTPClient is the base client. Its transport is wrapped to add the bearer header.
	HTTPClient *http.Client
}

// Client issues authenticated calls against the scheduling service. It holds
// no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Cal.com client. The key travels both as the apiKey query
// parameter and as an Authorization bearer header.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIKey,
		TokenType:   "Bearer",
	}))
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	logger.Info("calcom client configured",
		zap.String("base_url", baseURL),
		zap.String("api_key", maskSecret(cfg.APIKey)),
		zap.String("username", cfg.Username))

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		httpClient: httpClient,
		logger:     logger.Named("calcom"),
	}
}

// Username returns the account username used to scope queries.
func (c *Client) Username() string {
	return c.username
}

// Request performs one call and returns the raw JSON body on 200/201.
// Every other outcome is a *TransportError.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")

	params := url.Values{}
	for k, v := range query {
		params[k] = append([]string(nil), v...)
	}
	if params.Get(apiKeyParam) == "" {
		params.Set(apiKeyParam, c.apiKey)
	}
	safeParams := c.redactParams(params)

	fail := func(kind ErrorKind, err error) *TransportError {
		return &TransportError{Kind: kind, Method: method, URL: endpoint, Params: safeParams, Err: err}
	}

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, fail(KindInvalidMethod, nil)
	}

	var (
		payload []byte
		reader  io.Reader
	)
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fail(KindEncode, err)
		}
		reader = bytes.NewReader(payload)
	}

	log := c.logger.With(zap.String("method", method), zap.String("url", endpoint))
	log.Info("request",
		zap.String("params", truncate(safeParams.Encode(), maxLogParams)),
		zap.String("payload", truncate(string(payload), maxLogBody)))

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+params.Encode(), reader)
	if err != nil {
		return nil, fail(KindNetwork, c.redactErr(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := fail(KindNetwork, c.redactErr(err))
		log.Error("request failed", zap.Error(terr), zap.Duration("latency", time.Since(start)))
		return nil, terr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := fail(KindNetwork, err)
		terr.Status = resp.StatusCode
		log.Error("reading response failed", zap.Error(terr))
		return nil, terr
	}

	log = log.With(zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))
	log.Info("response", zap.String("body", truncate(string(raw), maxLogBody)))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		terr := fail(KindHTTPStatus, nil)
		terr.Status = resp.StatusCode
		terr.Body = truncate(string(raw), maxErrorBody)
		log.Error("API request failed", zap.Error(terr))
		return nil, terr
	}
	if !json.Valid(raw) {
		terr := fail(KindDecode, errors.New("response is not valid JSON"))
		terr.Body = truncate(string(raw), maxErrorBody)
		log.Error("malformed response", zap.Error(terr))
		return nil, terr
	}
	return json.RawMessage(raw), nil
}

// Do performs a call and decodes the body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.Request(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{
			Kind:   KindDecode,
			Method: method,
			URL:    c.baseURL + "/" + strings.TrimLeft(path, "/"),
			Body:   truncate(string(raw), maxErrorBody),
			Err:    err,
		}
	}
	return nil
}

func (c *Client) redactParams(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		if k == apiKeyParam {
			out[k] = []string{maskSecret(c.apiKey)}
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}

// redactErr scrubs the API key from *url.Error, whose message embeds the full URL.
func (c *Client) redactErr(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && c.apiKey != "" {
		uerr.URL = strings.ReplaceAll(uerr.URL, url.QueryEscape(c.apiKey), maskSecret(c.apiKey))
	}
	return err
}

// maskSecret keeps at most the first and last five characters.
func maskSecret(s string) string {
	if len(s) <= 12 {
		return "***"
	}
	return s[:5] + "..." + s[len(s)-5:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
