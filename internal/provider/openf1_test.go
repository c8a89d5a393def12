package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOpenF1Server serves canned JSON per path, asserting the session_key
// query param is forwarded.
func newOpenF1Server(t *testing.T, payloads map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestOpenF1_FetchSessionFacts(t *testing.T) {
	server := newOpenF1Server(t, map[string]string{
		"/drivers": `[
			{"driver_number": 1, "name_acronym": "VER", "team_name": "Red Bull Racing"},
			{"driver_number": 4, "name_acronym": "NOR", "team_name": "McLaren"},
			{"driver_number": 23, "name_acronym": "ALB", "team_name": "Williams"}
		]`,
		"/position": `[
			{"driver_number": 1, "position": 2, "date": "2026-03-08T15:00:00+00:00"},
			{"driver_number": 1, "position": 1, "date": "2026-03-08T16:30:00+00:00"},
			{"driver_number": 4, "position": 2, "date": "2026-03-08T16:30:00+00:00"},
			{"driver_number": 23, "position": null, "date": "2026-03-08T16:30:00+00:00"}
		]`,
		"/laps": `[
			{"driver_number": 4, "lap_duration": 90.1},
			{"driver_number": 1, "lap_duration": 89.5},
			{"driver_number": 1, "lap_duration": null}
		]`,
		"/pit": `[
			{"driver_number": 1, "date": "2026-03-08T15:40:00+00:00"},
			{"driver_number": 4, "date": "2026-03-08T15:20:00+00:00"}
		]`,
		"/race_control": `[
			{"message": "VIRTUAL SAFETY CAR DEPLOYED", "category": "SafetyCar", "lap_number": 3},
			{"message": "SAFETY CAR DEPLOYED", "category": "SafetyCar", "lap_number": 12},
			{"message": "CAR 23 (ALB) STOPPED AT TURN 4", "category": "Other", "driver_number": 23}
		]`,
	})
	defer server.Close()

	provider := NewOpenF1Provider(server.URL, 5*time.Second)
	facts, err := provider.FetchSessionFacts(context.Background(), "9999")
	require.NoError(t, err)

	require.NotNil(t, facts.Winner)
	assert.Equal(t, "VER", *facts.Winner)
	require.NotNil(t, facts.Pole)
	assert.Equal(t, "VER", *facts.Pole)
	assert.Equal(t, []string{"VER", "NOR"}, facts.Top5)
	assert.Equal(t, []string{"ALB"}, facts.DNFDriverCodes)

	require.NotNil(t, facts.FastestLap)
	assert.Equal(t, "VER", *facts.FastestLap)
	require.NotNil(t, facts.FirstPitStopTeam)
	assert.Equal(t, "MCLAREN", *facts.FirstPitStopTeam)

	// The virtual deployment on lap 3 does not count.
	assert.True(t, facts.SafetyCar)
	require.NotNil(t, facts.FirstSafetyCarLap)
	assert.Equal(t, 12, *facts.FirstSafetyCarLap)

	// 25 for the win plus the fastest-lap point.
	assert.Equal(t, 26, facts.ConstructorPoints["RED_BULL_RAC"])
	assert.Equal(t, 18, facts.ConstructorPoints["MCLAREN"])
	assert.Equal(t, "openf1", facts.Provider)
}

func TestOpenF1_FetchEvents(t *testing.T) {
	server := newOpenF1Server(t, map[string]string{
		"/meetings": `[
			{"meeting_key": 1229, "meeting_name": "Bahrain Grand Prix", "country_name": "Bahrain",
			 "date_start": "2026-03-06T12:00:00+00:00", "date_end": "2026-03-08T18:00:00+00:00"},
			{"meeting_key": 1230, "meeting_name": "", "country_name": "", "date_start": null, "date_end": null}
		]`,
	})
	defer server.Close()

	provider := NewOpenF1Provider(server.URL, 5*time.Second)
	events, err := provider.FetchEvents(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "1229", events[0].ExternalID)
	assert.Equal(t, "Bahrain Grand Prix", events[0].Name)
	assert.Equal(t, "2026-bahrain-grand-prix", events[0].Slug)
	require.NotNil(t, events[0].StartAt)
	assert.Equal(t, time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), events[0].StartAt.UTC())

	// Missing fields fall back to placeholders; missing dates stay nil for
	// the sync pass to skip.
	assert.Equal(t, "Grand Prix", events[1].Name)
	assert.Equal(t, "Unknown", events[1].Country)
	assert.Nil(t, events[1].StartAt)
}

func TestOpenF1_HealthCheck(t *testing.T) {
	healthy := newOpenF1Server(t, map[string]string{"/meetings": `[]`})
	defer healthy.Close()
	provider := NewOpenF1Provider(healthy.URL, 5*time.Second)
	assert.True(t, provider.HealthCheck(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	provider = NewOpenF1Provider(down.URL, 5*time.Second)
	assert.False(t, provider.HealthCheck(context.Background()))
}

func TestParseTimestamp(t *testing.T) {
	utc := "2026-03-06T12:00:00Z"
	parsed := parseTimestamp(&utc)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), parsed.UTC())

	bare := "2026-03-06T12:00:00"
	parsed = parseTimestamp(&bare)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), parsed.UTC())

	garbage := "next sunday"
	assert.Nil(t, parseTimestamp(&garbage))
	assert.Nil(t, parseTimestamp(nil))
}
