package discom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
)

// APISlab mirrors one slab row of a DISCOM API response.
type APISlab struct {
	Min  float64  `json:"min"`
	Max  *float64 `json:"max,omitempty"`
	Rate float64  `json:"rate"`
	Unit string   `json:"unit"`
}

// APITimeOfUse mirrors one time-of-use row of a DISCOM API response.
type APITimeOfUse struct {
	TimeRange string  `json:"timeRange"`
	Rate      float64 `json:"rate"`
	Unit      string  `json:"unit"`
}

// APITariff is the typed shape of a DISCOM tariff API response. Anything
// that does not decode into it is treated as a source failure, never passed
// through raw.
type APITariff struct {
	Rate          float64        `json:"rate"`
	Category      string         `json:"category"`
	CustomerType  string         `json:"customerType"`
	EffectiveFrom time.Time      `json:"effectiveFrom"`
	Slabs         []APISlab      `json:"slabs,omitempty"`
	TimeOfUse     []APITimeOfUse `json:"timeOfUse,omitempty"`
}

// Client fetches live tariffs from DISCOM APIs with a bounded timeout.
type Client struct {
	HTTP *http.Client
}

const fetchTimeout = 10 * time.Second

func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: fetchTimeout}}
}

// FetchTariff calls {endpoint}/tariffs/current. Every failure mode (network,
// status, parse, nonsense rate) wraps ExternalSourceError so the resolver
// can fall through.
func (c *Client) FetchTariff(ctx context.Context, d Discom) (*APITariff, error) {
	url := d.APIEndpoint + "/tariffs/current"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.External(d.Code, err)
	}
	if d.APIKey != "" {
		req.Header.Set("X-Api-Key", d.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperrors.External(d.Code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.External(d.Code, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload APITariff
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.External(d.Code, fmt.Errorf("malformed tariff payload: %w", err))
	}
	if payload.Rate <= 0 {
		return nil, apperrors.External(d.Code, fmt.Errorf("api returned non-positive rate %v", payload.Rate))
	}
	return &payload, nil
}
