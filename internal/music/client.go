package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultOEmbedURL is Spotify's public oEmbed endpoint.
const DefaultOEmbedURL = "https://open.spotify.com/oembed"

// Preview is the oEmbed metadata shown for a Spotify link.
type Preview struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	SourceURL    string `json:"source_url"`
}

// UpstreamError reports a failed or non-2xx oEmbed response.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spotify oembed: %v", e.Err)
	}
	return fmt.Sprintf("spotify oembed returned %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client fetches previews from the oEmbed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. An empty endpoint uses DefaultOEmbedURL.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultOEmbedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(zap.String("adapter", "spotify_oembed")),
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Preview validates link and fetches its oEmbed metadata.
func (c *Client) Preview(ctx context.Context, link string) (*Preview, error) {
	clean, err := ValidateSpotifyURL(link)
	if err != nil {
		return nil, err
	}

	reqURL := c.endpoint + "?url=" + url.QueryEscape(clean)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("spotify oembed: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("oembed request failed", zap.String("url", clean), zap.Error(err))
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("oembed unexpected status", zap.String("url", clean), zap.Int("status", resp.StatusCode))
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	var data oembedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode json: %w", err)}
	}

	return &Preview{
		Title:        data.Title,
		AuthorName:   data.AuthorName,
		ThumbnailURL: data.ThumbnailURL,
		SourceURL:    clean,
	}, nil
}
