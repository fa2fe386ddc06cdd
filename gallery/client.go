package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	listPath      = "/gravity/gallery/list"
	thumbnailPath = "/gravity/gallery/thumbnail"
	viewPath      = "/gravity/gallery/view"
)

var defaultClientTimeout = 30 * time.Second

// HTTPService talks to a remote gallery listing service.
type HTTPService struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// ClientOption mutates HTTPService configuration.
type ClientOption func(*HTTPService)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(s *HTTPService) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithTimeout sets the timeout of the default http client.
func WithTimeout(d time.Duration) ClientOption {
	return func(s *HTTPService) {
		s.httpClient.Timeout = d
	}
}

func NewHTTPService(base string, opts ...ClientOption) (*HTTPService, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	s := &HTTPService{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPService) List(ctx context.Context, directory string) (Listing, error) {
	q := url.Values{"directory": {directory}}
	body, err := s.get(ctx, listPath, q)
	if err != nil {
		return Listing{}, err
	}
	defer body.Close()

	var listing Listing
	if err := json.NewDecoder(body).Decode(&listing); err != nil {
		return Listing{}, fmt.Errorf("decode listing: %w", err)
	}
	return listing, nil
}

func (s *HTTPService) Thumbnail(ctx context.Context, directory, filename string, size int) ([]byte, error) {
	q := url.Values{
		"directory": {directory},
		"filename":  {filename},
		"size":      {strconv.Itoa(size)},
	}
	return s.read(ctx, thumbnailPath, q)
}

func (s *HTTPService) FullImage(ctx context.Context, directory, filename string) ([]byte, error) {
	q := url.Values{
		"directory": {directory},
		"filename":  {filename},
	}
	return s.read(ctx, viewPath, q)
}

func (s *HTTPService) read(ctx context.Context, path string, q url.Values) ([]byte, error) {
	body, err := s.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *HTTPService) get(ctx context.Context, path string, q url.Values) (io.ReadCloser, error) {
	u := s.baseURL.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w: %d", path, ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Body, nil
}
