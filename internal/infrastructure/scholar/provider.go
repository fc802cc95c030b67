// Package scholar consumes the external scholarly-search providers. Each
// provider is an opaque HTTP result source; this package fans a query out
// to all of them, merges what comes back, and caches merged results so
// repeated queries do not re-bill slow third parties.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	apperrors "github.com/curelink/curelink/pkg/errors"
)

// Provider is one external scholarly-search service.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// httpProvider queries a provider over its JSON search endpoint.
type httpProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider builds a provider client from configuration.
func NewHTTPProvider(cfg config.ProviderConfig, client *http.Client) Provider {
	return &httpProvider{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

// providerResponse is the wire shape shared by the configured providers.
type providerResponse struct {
	Results []struct {
		Title   string   `json:"title"`
		Authors []string `json:"authors"`
		Journal string   `json:"journal"`
		Year    int      `json:"year"`
		URL     string   `json:"url"`
	} `json:"results"`
}

func (p *httpProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	endpoint, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, apperrors.ErrUpstreamFailure("invalid provider base URL").WithCause(err)
	}

	q := endpoint.Query()
	q.Set("query", query)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrUpstreamFailure(fmt.Sprintf("provider %s unreachable", p.name)).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ErrUpstreamFailure(fmt.Sprintf("provider %s returned status %d", p.name, resp.StatusCode))
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.ErrUpstreamFailure(fmt.Sprintf("provider %s returned malformed response", p.name)).WithCause(err)
	}

	results := make([]models.SearchResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, models.SearchResult{
			Title:    r.Title,
			Authors:  r.Authors,
			Journal:  r.Journal,
			Year:     r.Year,
			URL:      r.URL,
			Provider: p.name,
		})
	}
	return results, nil
}
