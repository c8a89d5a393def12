package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gridstake/gridstake/internal/domain"
)

// DataProvider is the interface every upstream F1 data source implements.
// Implementations normalize their wire formats into domain types; callers
// never see provider-specific payloads.
type DataProvider interface {
	Name() string
	// HealthCheck reports whether the provider is currently reachable.
	// It returns false on any transport or status failure, never an error.
	HealthCheck(ctx context.Context) bool
	FetchEvents(ctx context.Context, seasonYear int) ([]domain.ProviderEvent, error)
	FetchSessionFacts(ctx context.Context, sessionExternalID string) (*domain.SessionFacts, error)
}

// getJSON fetches a URL with query params and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, baseURL, path string, params url.Values, out any) error {
	u := baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
