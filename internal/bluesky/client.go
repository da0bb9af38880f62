// Package bluesky is a minimal AT Protocol client covering the three
// XRPC calls posting needs: session creation, blob upload, and record
// creation.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const postCollection = "app.bsky.feed.post"

// Client talks to a single AT Protocol host.
type Client struct {
	host string
	http *http.Client
}

// New creates a client for the given host, e.g. "https://bsky.social".
func New(host string) *Client {
	return &Client{
		host: strings.TrimRight(host, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Session holds the tokens and identity returned by createSession.
type Session struct {
	AccessJWT  string `json:"accessJwt"`
	RefreshJWT string `json:"refreshJwt"`
	DID        string `json:"did"`
	Handle     string `json:"handle"`
}

// Error is an XRPC error response.
type Error struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("xrpc %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("xrpc %d %s", e.StatusCode, e.Code)
}

// Image is one attachment for a post. Data must be an encoded JPEG;
// Width and Height feed the aspect-ratio hint clients use to avoid
// layout shift.
type Image struct {
	Data   []byte
	Alt    string
	Width  int
	Height int
}

// PostResult identifies the created record.
type PostResult struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type blob struct {
	raw json.RawMessage
}

// CreateSession authenticates with an identifier (handle or DID) and an
// app password.
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (*Session, error) {
	body := map[string]string{"identifier": identifier, "password": password}
	var session Session
	if err := c.call(ctx, "com.atproto.server.createSession", "", "application/json", jsonBody(body), &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// uploadBlob stores the image bytes and returns the blob reference to
// embed in a record.
func (c *Client) uploadBlob(ctx context.Context, session *Session, data []byte, contentType string) (*blob, error) {
	var resp struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := c.call(ctx, "com.atproto.repo.uploadBlob", session.AccessJWT, contentType, bytes.NewReader(data), &resp); err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	return &blob{raw: resp.Blob}, nil
}

// PostPhotos uploads the images and creates a feed post embedding them.
// The caller enforces any platform attachment cap before calling.
func (c *Client) PostPhotos(ctx context.Context, session *Session, text string, images []Image) (*PostResult, error) {
	embedded := make([]map[string]any, 0, len(images))
	for i, img := range images {
		uploaded, err := c.uploadBlob(ctx, session, img.Data, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		entry := map[string]any{
			"alt":   img.Alt,
			"image": uploaded.raw,
		}
		if img.Width > 0 && img.Height > 0 {
			entry["aspectRatio"] = map[string]int{"width": img.Width, "height": img.Height}
		}
		embedded = append(embedded, entry)
	}

	record := map[string]any{
		"$type":     postCollection,
		"text":      text,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	if len(embedded) > 0 {
		record["embed"] = map[string]any{
			"$type":  "app.bsky.embed.images",
			"images": embedded,
		}
	}

	body := map[string]any{
		"repo":       session.DID,
		"collection": postCollection,
		"record":     record,
	}
	var result PostResult
	if err := c.call(ctx, "com.atproto.repo.createRecord", session.AccessJWT, "application/json", jsonBody(body), &result); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return &result, nil
}

// WebLink converts an at:// record URI into the public web URL for the
// post. Returns "" when the URI does not look like a feed post.
func WebLink(handle, uri string) string {
	marker := "/" + postCollection + "/"
	idx := strings.Index(uri, marker)
	if !strings.HasPrefix(uri, "at://") || idx < 0 {
		return ""
	}
	rkey := uri[idx+len(marker):]
	if rkey == "" {
		return ""
	}
	return "https://bsky.app/profile/" + handle + "/post/" + rkey
}

func jsonBody(v any) io.Reader {
	data, err := json.Marshal(v)
	if err != nil {
		// All request bodies are maps of marshalable values.
		panic(err)
	}
	return bytes.NewReader(data)
}

func (c *Client) call(ctx context.Context, method, token, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/xrpc/"+method, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		xerr := &Error{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, xerr)
		return xerr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
