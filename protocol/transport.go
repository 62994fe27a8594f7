package protocol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sdawka/ggit/internal/log"
	"github.com/sdawka/ggit/internal/retry"
)

// UserAgent identifies this client in the Git-protocol-mandated capability
// string and the HTTP User-Agent header.
const UserAgent = "ggit/0"

// Transport is an HTTP smart-transport client bound to a single
// repository URL.
type Transport struct {
	base       *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient overrides the default *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.httpClient = c }
}

// NewTransport returns a Transport for repoURL, which must be an absolute
// http(s) URL.
func NewTransport(repoURL string, opts ...Option) (*Transport, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing repository url: %v", ErrTransport, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrTransport, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	t := &Transport{
		base:       u,
		httpClient: http.DefaultClient,
		userAgent:  UserAgent,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Transport) addDefaultHeaders(req *http.Request) {
	req.Header.Set("User-Agent", t.userAgent)
}

// get issues a GET to path (relative to the repository base URL),
// retrying through the context's injected Retrier (a no-op retrier by
// default).
func (t *Transport) get(ctx context.Context, path string) ([]byte, error) {
	logger := log.FromContext(ctx)
	retrier := retry.FromContextOrNoop(ctx)

	u := t.base.JoinPath(path)

	var lastErr error
	for attempt := 1; ; attempt++ {
		body, err := t.doGet(ctx, u.String())
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retrier.ShouldRetry(err, attempt) {
			break
		}
		logger.Warn("protocol: retrying GET", "url", u.String(), "attempt", attempt, "error", err)
		if waitErr := retrier.Wait(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
	}
	return nil, lastErr
}

func (t *Transport) doGet(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrTransport, err)
	}
	t.addDefaultHeaders(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrTransport, u, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrTransport, err)
	}
	return body, nil
}

// UploadPack POSTs body to <base>/git-upload-pack and returns the raw
// response bytes (a side-band-64k-framed pkt-line stream, still to be
// demultiplexed by DemuxSideBand).
func (t *Transport) UploadPack(ctx context.Context, body []byte) ([]byte, error) {
	logger := log.FromContext(ctx)
	retrier := retry.FromContextOrNoop(ctx)

	u := t.base.JoinPath("git-upload-pack").String()

	var lastErr error
	for attempt := 1; ; attempt++ {
		resp, err := t.doUploadPack(ctx, u, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retrier.ShouldRetry(err, attempt) {
			break
		}
		logger.Warn("protocol: retrying POST", "url", u, "attempt", attempt, "error", err)
		if waitErr := retrier.Wait(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
	}
	return nil, lastErr
}

func (t *Transport) doUploadPack(ctx context.Context, u string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrTransport, err)
	}
	t.addDefaultHeaders(req)
	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: POST %s returned status %d", ErrTransport, u, resp.StatusCode)
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrTransport, err)
	}
	return respBody, nil
}
