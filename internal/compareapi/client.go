package compareapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"collatecheck/internal/collate"
)

// Compile-time checks: the client satisfies both backend capabilities.
var (
	_ collate.Pool         = (*HTTPClient)(nil)
	_ collate.CorpusSource = (*HTTPClient)(nil)
)

// HTTPClient is a comparator backend that talks to a remote compareapi
// Server.
type HTTPClient struct {
	base string
	http *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout. It applies per request; corpus
// fetches of a full Unicode corpus may need a generous value.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// NewHTTPClient creates a client for the comparator service at baseURL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a comparator session. *http.Client is safe for
// concurrent use, so sessions are cheap handles over the shared client.
func (c *HTTPClient) Session(_ context.Context) (collate.Session, error) {
	return &httpSession{client: c}, nil
}

// SortedCorpus fetches the corpus stream for the given ordering.
func (c *HTTPClient) SortedCorpus(ctx context.Context, ordering string) ([]string, error) {
	u := c.base + "/v1/corpus?ordering=" + url.QueryEscape(ordering)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("compareapi: build corpus request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compareapi: fetch corpus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var corpus []string
	dec := json.NewDecoder(resp.Body)
	for {
		var s string
		if err := dec.Decode(&s); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("compareapi: decode corpus stream: %w", err)
		}
		corpus = append(corpus, s)
	}
	if len(corpus) == 0 {
		return nil, collate.ErrEmptyCorpus
	}
	return corpus, nil
}

type httpSession struct {
	client *HTTPClient
}

func (s *httpSession) Compare(ctx context.Context, s1, s2, ordering string) (collate.PairResult, error) {
	body, err := json.Marshal(CompareRequest{S1: s1, S2: s2, Ordering: ordering})
	if err != nil {
		return collate.PairResult{}, fmt.Errorf("compareapi: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.base+"/v1/compare", bytes.NewReader(body))
	if err != nil {
		return collate.PairResult{}, fmt.Errorf("compareapi: build compare request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.http.Do(req)
	if err != nil {
		return collate.PairResult{}, fmt.Errorf("compareapi: compare: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return collate.PairResult{}, decodeError(resp)
	}

	var cr CompareResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return collate.PairResult{}, fmt.Errorf("compareapi: decode compare response: %w", err)
	}
	return collate.PairResult{Equal: cr.Equal, Less: cr.Less}, nil
}

func (s *httpSession) Close() error { return nil }

// decodeError maps a non-2xx reply back onto the domain error taxonomy.
func decodeError(resp *http.Response) error {
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("compareapi: server returned %s", resp.Status)
	}
	switch er.Code {
	case CodeEmptyCorpus:
		return collate.ErrEmptyCorpus
	case CodeUnknownOrdering:
		return fmt.Errorf("%w: %s", collate.ErrUnknownOrdering, er.Error)
	default:
		return fmt.Errorf("compareapi: %s: %s", er.Code, er.Error)
	}
}
