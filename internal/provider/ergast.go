package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gridstake/gridstake/internal/domain"
)

// ErgastProvider is the fallback data source, backed by the jolpi.ca mirror
// of the Ergast API. Its calendar feed is complete but it cannot supply
// per-session facts, so a failover keeps event sync working while outcome
// resolution reports everything unresolved.
type ErgastProvider struct {
	baseURL string
	client  *http.Client
}

// NewErgastProvider creates the fallback provider against the given base URL.
func NewErgastProvider(baseURL string, timeout time.Duration) *ErgastProvider {
	return &ErgastProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *ErgastProvider) Name() string { return "ergast" }

func (p *ErgastProvider) HealthCheck(ctx context.Context) bool {
	params := url.Values{"limit": {"1"}}
	var payload ergastSchedule
	return getJSON(ctx, p.client, p.baseURL, "/current.json", params, &payload) == nil
}

type ergastSchedule struct {
	MRData struct {
		RaceTable struct {
			Races []ergastRace `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type ergastRace struct {
	Round    string `json:"round"`
	RaceName string `json:"raceName"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Circuit  struct {
		Location struct {
			Country string `json:"country"`
		} `json:"Location"`
	} `json:"Circuit"`
}

func (p *ErgastProvider) FetchEvents(ctx context.Context, seasonYear int) ([]domain.ProviderEvent, error) {
	var payload ergastSchedule
	path := fmt.Sprintf("/%d.json", seasonYear)
	if err := getJSON(ctx, p.client, p.baseURL, path, nil, &payload); err != nil {
		return nil, err
	}

	races := payload.MRData.RaceTable.Races
	events := make([]domain.ProviderEvent, 0, len(races))
	for _, race := range races {
		name := race.RaceName
		if name == "" {
			name = "Grand Prix"
		}
		country := race.Circuit.Location.Country
		if country == "" {
			country = "Unknown"
		}
		round := race.Round
		if round == "" {
			round = "x"
		}
		var startAt *time.Time
		if race.Date != "" {
			raceTime := race.Time
			if raceTime == "" {
				raceTime = "00:00:00Z"
			}
			raw := race.Date + "T" + raceTime
			startAt = parseTimestamp(&raw)
		}
		events = append(events, domain.ProviderEvent{
			ExternalID: round,
			Name:       name,
			Slug:       fmt.Sprintf("%d-%s", seasonYear, round),
			Country:    country,
			StartAt:    startAt,
			EndAt:      startAt,
		})
	}
	return events, nil
}

// FetchSessionFacts returns an empty fact bundle. The mirror has no
// session-level results endpoint in the shape resolution needs, and empty
// facts are the contract for "nothing could be resolved".
func (p *ErgastProvider) FetchSessionFacts(ctx context.Context, sessionExternalID string) (*domain.SessionFacts, error) {
	return &domain.SessionFacts{
		Top5:              []string{},
		DNFDriverCodes:    []string{},
		ConstructorPoints: map[string]int{},
		Provider:          p.Name(),
	}, nil
}
