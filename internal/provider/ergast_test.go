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

func TestErgast_FetchEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2026.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"MRData": {"RaceTable": {"Races": [
			{"round": "1", "raceName": "Bahrain Grand Prix", "date": "2026-03-08", "time": "15:00:00Z",
			 "Circuit": {"Location": {"country": "Bahrain"}}},
			{"round": "2", "raceName": "Saudi Arabian Grand Prix", "date": "2026-03-15",
			 "Circuit": {"Location": {"country": "Saudi Arabia"}}}
		]}}}`))
	}))
	defer server.Close()

	provider := NewErgastProvider(server.URL, 5*time.Second)
	events, err := provider.FetchEvents(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "1", events[0].ExternalID)
	assert.Equal(t, "2026-1", events[0].Slug)
	require.NotNil(t, events[0].StartAt)
	assert.Equal(t, time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC), events[0].StartAt.UTC())

	// Missing race time defaults to midnight.
	require.NotNil(t, events[1].StartAt)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), events[1].StartAt.UTC())
}

func TestErgast_FetchSessionFactsIsEmpty(t *testing.T) {
	provider := NewErgastProvider("http://unused.invalid", 5*time.Second)

	facts, err := provider.FetchSessionFacts(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Nil(t, facts.Winner)
	assert.Empty(t, facts.Top5)
	assert.Empty(t, facts.DNFDriverCodes)
	assert.Empty(t, facts.ConstructorPoints)
	assert.Equal(t, "ergast", facts.Provider)
}
