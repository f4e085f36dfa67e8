package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/lead-import/api/internal/entity"
)

// EnrichmentProvider resolves missing company fields from an external source.
type EnrichmentProvider interface {
	Lookup(ctx context.Context, company, locality, segment string) (entity.CompanyProfile, error)
}

// HTTPEnrichmentProvider calls the enrichment service over HTTP.
type HTTPEnrichmentProvider struct {
	client  *http.Client
	baseURL string
}

// NewHTTPEnrichmentProvider builds a provider client, auto-configuring an ID
// token client when none is supplied.
func NewHTTPEnrichmentProvider(client *http.Client, baseURL string) *HTTPEnrichmentProvider {
	if baseURL == "" {
		panic("baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &HTTPEnrichmentProvider{client: client, baseURL: baseURL}
}

// Lookup posts the company identifiers and returns the partial profile.
func (p *HTTPEnrichmentProvider) Lookup(ctx context.Context, company, locality, segment string) (entity.CompanyProfile, error) {
	body, err := json.Marshal(map[string]string{
		"company":  company,
		"locality": locality,
		"segment":  segment,
	})
	if err != nil {
		return entity.CompanyProfile{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := p.baseURL + "/lookup"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return entity.CompanyProfile{}, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return entity.CompanyProfile{}, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return entity.CompanyProfile{}, fmt.Errorf("provider error: %s", extractProviderError(resp.Body))
	}

	var providerResp struct {
		Data  entity.CompanyProfile `json:"data"`
		Error string                `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&providerResp); err != nil && err != io.EOF {
		return entity.CompanyProfile{}, fmt.Errorf("could not decode provider response: %w", err)
	}
	if providerResp.Error != "" {
		return entity.CompanyProfile{}, fmt.Errorf("provider error: %s", providerResp.Error)
	}
	return providerResp.Data, nil
}

func extractProviderError(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return "provider returned an error status"
}

var _ EnrichmentProvider = (*HTTPEnrichmentProvider)(nil)
