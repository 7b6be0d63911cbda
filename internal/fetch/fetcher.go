// ABOUTME: Resolves file references to download URLs and fetches their bytes.
// ABOUTME: Every download is cache-busted; replaced uploads must never serve stale.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/google/uuid"

	"github.com/fieldkit/sheetbridge/internal/uploadref"
)

// ResolvedFile is a reference resolved to something downloadable.
type ResolvedFile struct {
	URL      string
	Filename string
	MimeType string
}

// Resolve turns a file reference into a downloadable URL. Upload-id
// references go through the API and also yield filename and MIME type;
// direct URLs are used as-is with the filename best-effort parsed from
// the URL path.
func (c *Client) Resolve(ctx context.Context, ref *uploadref.FileReference) (*ResolvedFile, error) {
	switch {
	case ref == nil:
		return nil, fmt.Errorf("nil file reference")
	case ref.UploadID != "":
		up, err := c.GetUpload(ctx, ref.UploadID)
		if err != nil {
			return nil, err
		}
		rf := &ResolvedFile{URL: up.URL, Filename: up.Filename, MimeType: up.MimeType}
		if rf.Filename == "" {
			rf.Filename = filenameFromURL(up.URL)
		}
		return rf, nil
	case ref.DirectURL != "":
		return &ResolvedFile{URL: ref.DirectURL, Filename: filenameFromURL(ref.DirectURL)}, nil
	default:
		return nil, fmt.Errorf("empty file reference")
	}
}

// Download fetches the file bytes. A cache-defeating query parameter and
// no-cache headers are applied on every request: the same upload id can be
// re-fetched after being replaced server-side, and a stale body would
// silently corrupt the import. Returns bytes and the response content type.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	busted, err := cacheBust(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("bad download URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, busted, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", httpError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read download body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func cacheBust(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cb", uuid.NewString())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
