package domain

import "time"

// SessionFacts is the normalized outcome bundle a data provider returns for
// one finished session. Absent facts are zero values; resolution treats
// absence as "unresolved", never as an error.
type SessionFacts struct {
	Winner            *string
	Pole              *string
	Top5              []string
	DNFDriverCodes    []string
	FastestLap        *string
	SafetyCar         bool
	FirstPitStopTeam  *string
	FirstSafetyCarLap *int
	// ConstructorPoints maps constructor code to points scored in the
	// session, used to derive the midfield constructor when the provider
	// does not supply one directly.
	ConstructorPoints   map[string]int
	MidfieldConstructor *string
	Provider            string
}

// ProviderEvent is one calendar entry returned by a provider's events feed.
type ProviderEvent struct {
	ExternalID string
	Name       string
	Slug       string
	Country    string
	StartAt    *time.Time
	EndAt      *time.Time
}

// ProviderSyncLog records one interaction with a data provider.
type ProviderSyncLog struct {
	ID           string
	ProviderName string
	Resource     string
	Status       JobStatus
	Details      *string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
