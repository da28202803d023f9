// Package wooapi wraps the sheets-api WordPress plugin endpoints.
package wooapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bartek5186/sheet2woo/internal/catalog"
)

const (
	pathGetProducts    = "/wp-json/sheets-api/v1/get_products"
	pathUpdateProducts = "/wp-json/sheets-api/v1/update_products"
	pathTestConnection = "/wp-json/sheets-api/v1/test_connection"

	headerSheetToken = "X-Sheet-Token"
)

// ErrBadPayload means the response was 2xx but its body did not have the
// expected shape (no `data` array).
var ErrBadPayload = errors.New("wooapi: response missing data array")

// RemoteError is any non-2xx response. Body is the raw response body,
// Message the parsed `message` field when the body was JSON.
type RemoteError struct {
	Status  int
	URL     string
	Body    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error %d from %s: %s", e.Status, e.URL, e.Message)
	}
	return fmt.Sprintf("remote error %d from %s: %s", e.Status, e.URL, e.Body)
}

// API is what the sync engine needs from the remote side. *Client
// implements it; engine tests substitute fakes.
type API interface {
	GetProducts(ctx context.Context, token string) ([]catalog.Product, string, error)
	UpdateProducts(ctx context.Context, token string, products []catalog.Product, deletedIDs []string) (UpdateResult, error)
	TestConnection(ctx context.Context, token string) error
}

// UpdateResult summarizes a push response.
type UpdateResult struct {
	Message string
	Updated int
	Deleted int
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a client for the given base URL (no trailing slash).
func NewClient(log zerolog.Logger, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// WithHTTPClient overrides the HTTP client, used by tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// GetProducts fetches the full catalog. The remote returns products in
// its own (oldest-first) order; callers decide presentation order.
func (c *Client) GetProducts(ctx context.Context, token string) ([]catalog.Product, string, error) {
	body, reqURL, err := c.do(ctx, http.MethodGet, pathGetProducts, token, nil)
	if err != nil {
		return nil, "", err
	}

	// `data` must be present and an array; tolerate null message
	var probe struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(probe.Data) == 0 || string(probe.Data) == "null" {
		return nil, "", fmt.Errorf("%w (from %s)", ErrBadPayload, reqURL)
	}
	var products []catalog.Product
	if err := json.Unmarshal(probe.Data, &products); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	c.log.Debug().Int("count", len(products)).Msg("fetched products")
	return products, probe.Message, nil
}

type updateRequest struct {
	Products   []catalog.Product `json:"products"`
	DeletedIDs []string          `json:"deleted_ids"`
}

type updateResponse struct {
	Message string `json:"message"`
	Data    struct {
		Updated []json.RawMessage `json:"updated"`
		Deleted []json.RawMessage `json:"deleted"`
	} `json:"data"`
}

// UpdateProducts upserts products and deletes deletedIDs in one call.
func (c *Client) UpdateProducts(ctx context.Context, token string, products []catalog.Product, deletedIDs []string) (UpdateResult, error) {
	if deletedIDs == nil {
		deletedIDs = []string{} // the plugin rejects null deleted_ids
	}
	payload, err := json.Marshal(updateRequest{Products: products, DeletedIDs: deletedIDs})
	if err != nil {
		return UpdateResult{}, err
	}

	body, _, err := c.do(ctx, http.MethodPost, pathUpdateProducts, token, payload)
	if err != nil {
		return UpdateResult{}, err
	}

	var resp updateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// 2xx with an unparseable body still counts as a success,
		// just without counts
		c.log.Warn().Err(err).Msg("push response not parseable, counts default to zero")
		return UpdateResult{}, nil
	}
	return UpdateResult{
		Message: resp.Message,
		Updated: len(resp.Data.Updated),
		Deleted: len(resp.Data.Deleted),
	}, nil
}

// TestConnection checks reachability and token validity.
func (c *Client) TestConnection(ctx context.Context, token string) error {
	_, _, err := c.do(ctx, http.MethodGet, pathTestConnection, token, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, string, error) {
	reqURL := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, reqURL, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerSheetToken, token)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, reqURL, fmt.Errorf("%s %s: %w", method, reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, reqURL, fmt.Errorf("reading response from %s: %w", reqURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &RemoteError{Status: resp.StatusCode, URL: reqURL, Body: string(body)}
		var parsed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &parsed) == nil {
			remoteErr.Message = parsed.Message
		}
		return nil, reqURL, remoteErr
	}
	return body, reqURL, nil
}
