package provider

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gridstake/gridstake/internal/domain"
)

// racePointsByPosition is the points table used to estimate constructor
// points from finishing positions.
var racePointsByPosition = map[int]int{
	1: 25, 2: 18, 3: 15, 4: 12, 5: 10,
	6: 8, 7: 6, 8: 4, 9: 2, 10: 1,
}

// OpenF1Provider is the primary data source, backed by the OpenF1 REST API.
type OpenF1Provider struct {
	baseURL string
	client  *http.Client
}

// NewOpenF1Provider creates the primary provider against the given base URL.
func NewOpenF1Provider(baseURL string, timeout time.Duration) *OpenF1Provider {
	return &OpenF1Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenF1Provider) Name() string { return "openf1" }

func (p *OpenF1Provider) HealthCheck(ctx context.Context) bool {
	params := url.Values{"year": {strconv.Itoa(time.Now().UTC().Year())}}
	var payload []openF1Meeting
	return getJSON(ctx, p.client, p.baseURL, "/meetings", params, &payload) == nil
}

type openF1Meeting struct {
	MeetingKey  int     `json:"meeting_key"`
	MeetingName string  `json:"meeting_name"`
	CountryName string  `json:"country_name"`
	DateStart   *string `json:"date_start"`
	DateEnd     *string `json:"date_end"`
}

func (p *OpenF1Provider) FetchEvents(ctx context.Context, seasonYear int) ([]domain.ProviderEvent, error) {
	params := url.Values{"year": {strconv.Itoa(seasonYear)}}
	var payload []openF1Meeting
	if err := getJSON(ctx, p.client, p.baseURL, "/meetings", params, &payload); err != nil {
		return nil, err
	}

	events := make([]domain.ProviderEvent, 0, len(payload))
	for _, item := range payload {
		name := item.MeetingName
		if name == "" {
			name = "Grand Prix"
		}
		country := item.CountryName
		if country == "" {
			country = "Unknown"
		}
		endRaw := item.DateEnd
		if endRaw == nil {
			endRaw = item.DateStart
		}
		events = append(events, domain.ProviderEvent{
			ExternalID: strconv.Itoa(item.MeetingKey),
			Name:       name,
			Slug:       eventSlug(seasonYear, name),
			Country:    country,
			StartAt:    parseTimestamp(item.DateStart),
			EndAt:      parseTimestamp(endRaw),
		})
	}
	return events, nil
}

type openF1Driver struct {
	DriverNumber  *int   `json:"driver_number"`
	NameAcronym   string `json:"name_acronym"`
	BroadcastName string `json:"broadcast_name"`
	TeamName      string `json:"team_name"`
}

type openF1Position struct {
	DriverNumber *int   `json:"driver_number"`
	Position     *int   `json:"position"`
	Date         string `json:"date"`
}

type openF1Lap struct {
	DriverNumber *int     `json:"driver_number"`
	LapDuration  *float64 `json:"lap_duration"`
}

type openF1Pit struct {
	DriverNumber *int    `json:"driver_number"`
	Date         *string `json:"date"`
}

type openF1RaceControl struct {
	Message      string `json:"message"`
	Category     string `json:"category"`
	LapNumber    *int   `json:"lap_number"`
	DriverNumber *int   `json:"driver_number"`
}

type driverDetails struct {
	driverCode      string
	constructorCode string
}

type finishedDriver struct {
	position        int
	driverCode      string
	constructorCode string
}

// FetchSessionFacts assembles normalized session facts out of five OpenF1
// feeds: driver identities, position ticks, lap times, pit stops and race
// control messages. Winner comes out of the final positions, DNFs out of
// drivers without a final position plus retirement messages, and constructor
// points are estimated from the race points table.
func (p *OpenF1Provider) FetchSessionFacts(ctx context.Context, sessionExternalID string) (*domain.SessionFacts, error) {
	params := url.Values{"session_key": {sessionExternalID}}

	var drivers []openF1Driver
	if err := getJSON(ctx, p.client, p.baseURL, "/drivers", params, &drivers); err != nil {
		return nil, err
	}
	var positions []openF1Position
	if err := getJSON(ctx, p.client, p.baseURL, "/position", params, &positions); err != nil {
		return nil, err
	}
	var laps []openF1Lap
	if err := getJSON(ctx, p.client, p.baseURL, "/laps", params, &laps); err != nil {
		return nil, err
	}
	var pits []openF1Pit
	if err := getJSON(ctx, p.client, p.baseURL, "/pit", params, &pits); err != nil {
		return nil, err
	}
	var raceControl []openF1RaceControl
	if err := getJSON(ctx, p.client, p.baseURL, "/race_control", params, &raceControl); err != nil {
		return nil, err
	}

	driverMap := make(map[int]driverDetails)
	for _, row := range drivers {
		if row.DriverNumber == nil {
			continue
		}
		code := row.NameAcronym
		if code == "" {
			code = row.BroadcastName
		}
		if code == "" {
			code = strconv.Itoa(*row.DriverNumber)
		}
		team := row.TeamName
		if team == "" {
			team = "UNK"
		}
		driverMap[*row.DriverNumber] = driverDetails{
			driverCode:      truncate(strings.ToUpper(code), 8),
			constructorCode: truncate(strings.ReplaceAll(strings.ToUpper(team), " ", "_"), 12),
		}
	}

	// Position feeds are tick streams; only the last tick per driver counts.
	latest := make(map[int]openF1Position)
	for _, row := range positions {
		if row.DriverNumber == nil {
			continue
		}
		existing, ok := latest[*row.DriverNumber]
		if !ok || row.Date > existing.Date {
			latest[*row.DriverNumber] = row
		}
	}

	dnf := make(map[string]bool)
	var finished []finishedDriver
	for number, row := range latest {
		details, ok := driverMap[number]
		if !ok {
			continue
		}
		if row.Position == nil {
			dnf[details.driverCode] = true
			continue
		}
		finished = append(finished, finishedDriver{
			position:        *row.Position,
			driverCode:      details.driverCode,
			constructorCode: details.constructorCode,
		})
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].position < finished[j].position })

	var fastestLapCode *string
	var fastestDuration float64
	for _, row := range laps {
		if row.LapDuration == nil || row.DriverNumber == nil || *row.LapDuration <= 0 {
			continue
		}
		if fastestLapCode == nil || *row.LapDuration < fastestDuration {
			details, ok := driverMap[*row.DriverNumber]
			if !ok {
				continue
			}
			fastestDuration = *row.LapDuration
			code := details.driverCode
			fastestLapCode = &code
		}
	}

	var firstPitStopTeam *string
	var earliestPitDate string
	for _, row := range pits {
		if row.Date == nil || row.DriverNumber == nil {
			continue
		}
		if firstPitStopTeam == nil || *row.Date < earliestPitDate {
			details, ok := driverMap[*row.DriverNumber]
			if !ok {
				continue
			}
			earliestPitDate = *row.Date
			team := details.constructorCode
			firstPitStopTeam = &team
		}
	}

	safetyCar := false
	var firstSafetyCarLap *int
	for _, row := range raceControl {
		message := strings.ToUpper(row.Message)
		category := strings.ToUpper(row.Category)

		if strings.Contains(message, "SAFETY CAR") && !strings.Contains(message, "VIRTUAL") {
			safetyCar = true
			if row.LapNumber != nil && (firstSafetyCarLap == nil || *row.LapNumber < *firstSafetyCarLap) {
				lap := *row.LapNumber
				firstSafetyCarLap = &lap
			}
		}

		if isRetirement(message, category) && row.DriverNumber != nil {
			if details, ok := driverMap[*row.DriverNumber]; ok {
				dnf[details.driverCode] = true
			}
		}
	}

	constructorPoints := make(map[string]int)
	for _, row := range finished {
		constructorPoints[row.constructorCode] += racePointsByPosition[row.position]
	}
	if fastestLapCode != nil {
		for _, row := range finished {
			if row.driverCode == *fastestLapCode && row.position <= 10 {
				constructorPoints[row.constructorCode]++
				break
			}
		}
	}

	facts := &domain.SessionFacts{
		Top5:              make([]string, 0, 5),
		DNFDriverCodes:    sortedKeys(dnf),
		FastestLap:        fastestLapCode,
		SafetyCar:         safetyCar,
		FirstPitStopTeam:  firstPitStopTeam,
		FirstSafetyCarLap: firstSafetyCarLap,
		ConstructorPoints: constructorPoints,
		Provider:          p.Name(),
	}
	if len(finished) > 0 {
		winner := finished[0].driverCode
		facts.Winner = &winner
		// Qualifying sessions report the pole sitter in first position.
		facts.Pole = &winner
	}
	for i := 0; i < len(finished) && i < 5; i++ {
		facts.Top5 = append(facts.Top5, finished[i].driverCode)
	}
	return facts, nil
}

func isRetirement(message, category string) bool {
	for _, term := range []string{"RETIRED", "DNF", "STOPPED", "WITHDRAW"} {
		if strings.Contains(message, term) {
			return true
		}
	}
	return strings.Contains(category, "RETIRE")
}

func eventSlug(seasonYear int, name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	return strconv.Itoa(seasonYear) + "-" + truncate(slug, 100)
}

func parseTimestamp(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, strings.Replace(*raw, "Z", "+00:00", 1))
	if err != nil {
		// OpenF1 sometimes omits the offset entirely.
		t, err = time.Parse("2006-01-02T15:04:05", *raw)
		if err != nil {
			return nil
		}
		t = t.UTC()
	}
	return &t
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
