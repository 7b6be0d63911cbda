// ABOUTME: Minimal credentialed CMS API client: upload metadata and publish.
// ABOUTME: Resolves upload ids to download URLs with filename and MIME type.

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNoCredential is returned when an upload-id reference needs the CMS
// API but no token is configured. Callers surface it as a configuration
// notice, not a crash.
var ErrNoCredential = errors.New("no CMS API token configured")

// Client talks to the content API. A zero token means the client can only
// handle direct-URL references.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient builds a client for the API at baseURL. token may be empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{},
	}
}

// HasCredential reports whether upload-id resolution is possible.
func (c *Client) HasCredential() bool {
	return c.token != ""
}

// Upload is the metadata the API reports for one uploaded asset.
type Upload struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

type uploadEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes Upload `json:"attributes"`
	} `json:"data"`
}

// GetUpload fetches metadata for one upload by id.
func (c *Client) GetUpload(ctx context.Context, id string) (*Upload, error) {
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/uploads/"+id, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch upload %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}

	var env uploadEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode upload %s: %w", id, err)
	}
	up := env.Data.Attributes
	if up.ID == "" {
		up.ID = env.Data.ID
	}
	if up.URL == "" {
		return nil, fmt.Errorf("upload %s has no URL", id)
	}
	return &up, nil
}

// PublishRecord publishes a content record by id.
func (c *Client) PublishRecord(ctx context.Context, recordID string) error {
	if !c.HasCredential() {
		return ErrNoCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/items/"+recordID+"/publish", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("publish record %s: %w", recordID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}

// HTTPError carries the status and body of a non-2xx API response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Body)
	}
	return e.Status
}

func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
