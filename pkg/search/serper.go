package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultSerperURL = "https://google.serper.dev/search"

type SerperClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *gocache.Cache
}

var _ Client = &SerperClient{}

func NewSerperClient(apiKey string, timeout, cacheTTL time.Duration) *SerperClient {
	return &SerperClient{
		apiKey:  apiKey,
		baseURL: defaultSerperURL,
		client: &http.Client{
			Timeout: timeout,
		},
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// WithBaseURL overrides the provider endpoint, used by tests.
func (s *SerperClient) WithBaseURL(url string) *SerperClient {
	s.baseURL = url
	return s
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []Result `json:"organic"`
}

func (s *SerperClient) Search(ctx context.Context, query string, num int) ([]Result, error) {
	cacheKey := fmt.Sprintf("%s|%d", query, num)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]Result), nil
	}

	payload, err := json.Marshal(serperRequest{Q: query, Num: num})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("serper error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var serperResp serperResponse
	if err := json.Unmarshal(bodyBytes, &serperResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	s.cache.Set(cacheKey, serperResp.Organic, gocache.DefaultExpiration)
	return serperResp.Organic, nil
}
