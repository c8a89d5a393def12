// Package storetest provides an in-memory repository.Tx and
// repository.TxManager for service tests, mirroring the semantics of the
// postgres store including the uniqueness keys it enforces.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridstake/gridstake/internal/domain"
	"github.com/gridstake/gridstake/internal/repository"
)

// Store is an in-memory unit of work. The zero value is not usable; call
// New. Every method can be made to fail by name via FailWith.
type Store struct {
	mu sync.Mutex

	Seasons     map[string]*domain.Season
	Events      map[string]*domain.Event
	Sessions    map[string]*domain.Session
	Questions   map[string]*domain.QuestionInstance
	Rules       map[string]*domain.ScoringRule
	Predictions map[string]*domain.Prediction
	Answers     []domain.PredictionAnswer
	Allocations []domain.PredictionConfidenceAllocation

	ScoreEntries    []domain.ScoreEntry
	Snapshots       []domain.LeaderboardSnapshot
	LeagueSnapshots []domain.LeagueSnapshot
	Leagues         map[string]*domain.League
	LeagueMembers   []domain.LeagueMember

	JobRuns  map[string]*domain.JobRun
	SyncLogs []domain.ProviderSyncLog
	Users    map[string]*domain.User
	Profiles map[string]*domain.Profile

	Commits   int
	Rollbacks int

	failures map[string]error
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		Seasons:     make(map[string]*domain.Season),
		Events:      make(map[string]*domain.Event),
		Sessions:    make(map[string]*domain.Session),
		Questions:   make(map[string]*domain.QuestionInstance),
		Rules:       make(map[string]*domain.ScoringRule),
		Predictions: make(map[string]*domain.Prediction),
		Leagues:     make(map[string]*domain.League),
		JobRuns:     make(map[string]*domain.JobRun),
		Users:       make(map[string]*domain.User),
		Profiles:    make(map[string]*domain.Profile),
		failures:    make(map[string]error),
	}
}

var (
	_ repository.Tx        = (*Store)(nil)
	_ repository.TxManager = (*Store)(nil)
)

// FailWith makes the named method return err on every call.
func (s *Store) FailWith(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

// Begin returns the store itself; there is no isolation between fake
// transactions.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := s.fail("Begin"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Commit"); err != nil {
		return err
	}
	s.Commits++
	return nil
}

func (s *Store) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rollbacks++
	return nil
}

// Season

func (s *Store) GetCurrentSeason(ctx context.Context) (*domain.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetCurrentSeason"); err != nil {
		return nil, err
	}
	for _, season := range s.Seasons {
		if season.IsCurrent {
			return season, nil
		}
	}
	return nil, nil
}

func (s *Store) GetSeasonByYear(ctx context.Context, year int) (*domain.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetSeasonByYear"); err != nil {
		return nil, err
	}
	for _, season := range s.Seasons {
		if season.Year == year {
			return season, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertSeason(ctx context.Context, season *domain.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertSeason"); err != nil {
		return err
	}
	s.Seasons[season.ID] = season
	return nil
}

func (s *Store) MarkSeasonCurrent(ctx context.Context, seasonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, season := range s.Seasons {
		season.IsCurrent = season.ID == seasonID
	}
	return nil
}

// Event

func (s *Store) ListEventsBySeason(ctx context.Context, seasonID string) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []domain.Event
	for _, event := range s.Events {
		if event.SeasonID == seasonID {
			events = append(events, *event)
		}
	}
	return events, nil
}

func (s *Store) UpsertEvent(ctx context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertEvent"); err != nil {
		return err
	}
	for id, existing := range s.Events {
		if existing.Slug == event.Slug {
			event.ID = id
			s.Events[id] = event
			return nil
		}
	}
	s.Events[event.ID] = event
	return nil
}

// Session

func (s *Store) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetSession"); err != nil {
		return nil, err
	}
	session, ok := s.Sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	copied := *session
	return &copied, nil
}

func (s *Store) InsertSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions[session.ID] = session
	return nil
}

func (s *Store) UpdateSessionState(ctx context.Context, sessionID string, state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateSessionState"); err != nil {
		return err
	}
	session, ok := s.Sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	session.State = state
	return nil
}

func (s *Store) OpenScheduledSessions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("OpenScheduledSessions"); err != nil {
		return 0, err
	}
	opened := 0
	for _, session := range s.Sessions {
		if session.State == domain.SessionStateScheduled && !session.StartsAt.After(now) {
			session.State = domain.SessionStateOpen
			opened++
		}
	}
	return opened, nil
}

func (s *Store) LockExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("LockExpiredSessions"); err != nil {
		return 0, err
	}
	locked := 0
	for _, session := range s.Sessions {
		open := session.State == domain.SessionStateScheduled || session.State == domain.SessionStateOpen
		if open && !session.LockAt.After(now) {
			session.State = domain.SessionStateLocked
			locked++
		}
	}
	return locked, nil
}

func (s *Store) ListFinalizeCandidates(ctx context.Context, now time.Time) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListFinalizeCandidates"); err != nil {
		return nil, err
	}
	var candidates []domain.Session
	for _, session := range s.Sessions {
		ended := !session.EndsAt.After(now)
		pending := session.State == domain.SessionStateOpen || session.State == domain.SessionStateLocked
		if ended && pending {
			candidates = append(candidates, *session)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates, nil
}

// Question

func (s *Store) ListQuestionsBySession(ctx context.Context, sessionID string) ([]domain.QuestionInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListQuestionsBySession"); err != nil {
		return nil, err
	}
	var questions []domain.QuestionInstance
	for _, question := range s.Questions {
		if question.SessionID == sessionID {
			questions = append(questions, *question)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (s *Store) InsertQuestion(ctx context.Context, question *domain.QuestionInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Questions[question.ID] = question
	return nil
}

func (s *Store) SetCorrectOption(ctx context.Context, questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetCorrectOption"); err != nil {
		return err
	}
	question, ok := s.Questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}
	question.CorrectOption = &option
	return nil
}

func (s *Store) GetScoringRules(ctx context.Context, ruleIDs []string) ([]domain.ScoringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetScoringRules"); err != nil {
		return nil, err
	}
	var rules []domain.ScoringRule
	for _, id := range ruleIDs {
		if rule, ok := s.Rules[id]; ok {
			rules = append(rules, *rule)
		}
	}
	return rules, nil
}

func (s *Store) InsertScoringRule(ctx context.Context, rule *domain.ScoringRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rules[rule.ID] = rule
	return nil
}

// Prediction

func (s *Store) GetPrediction(ctx context.Context, userID, sessionID string) (*domain.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetPrediction"); err != nil {
		return nil, err
	}
	for _, prediction := range s.Predictions {
		if prediction.UserID == userID && prediction.SessionID == sessionID {
			copied := *prediction
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertPrediction(ctx context.Context, prediction *domain.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertPrediction"); err != nil {
		return err
	}
	s.Predictions[prediction.ID] = prediction
	return nil
}

func (s *Store) TouchPrediction(ctx context.Context, predictionID string, clientVersion *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prediction, ok := s.Predictions[predictionID]; ok {
		prediction.ClientVersion = clientVersion
		prediction.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *Store) ListPredictionsBySession(ctx context.Context, sessionID string) ([]domain.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListPredictionsBySession"); err != nil {
		return nil, err
	}
	var predictions []domain.Prediction
	for _, prediction := range s.Predictions {
		if prediction.SessionID == sessionID {
			predictions = append(predictions, *prediction)
		}
	}
	sort.Slice(predictions, func(i, j int) bool { return predictions[i].ID < predictions[j].ID })
	return predictions, nil
}

func (s *Store) DeleteAnswersByPrediction(ctx context.Context, predictionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Answers[:0]
	for _, answer := range s.Answers {
		if answer.PredictionID != predictionID {
			kept = append(kept, answer)
		}
	}
	s.Answers = kept
	return nil
}

func (s *Store) DeleteAllocationsByPrediction(ctx context.Context, predictionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Allocations[:0]
	for _, allocation := range s.Allocations {
		if allocation.PredictionID != predictionID {
			kept = append(kept, allocation)
		}
	}
	s.Allocations = kept
	return nil
}

func (s *Store) InsertAnswer(ctx context.Context, answer *domain.PredictionAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertAnswer"); err != nil {
		return err
	}
	s.Answers = append(s.Answers, *answer)
	return nil
}

func (s *Store) InsertAllocation(ctx context.Context, allocation *domain.PredictionConfidenceAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Allocations = append(s.Allocations, *allocation)
	return nil
}

func (s *Store) ListAnswersForPredictions(ctx context.Context, predictionIDs []string) ([]domain.PredictionAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListAnswersForPredictions"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(predictionIDs))
	for _, id := range predictionIDs {
		wanted[id] = true
	}
	var answers []domain.PredictionAnswer
	for _, answer := range s.Answers {
		if wanted[answer.PredictionID] {
			answers = append(answers, answer)
		}
	}
	return answers, nil
}

func (s *Store) ListAllocationsForPredictions(ctx context.Context, predictionIDs []string) ([]domain.PredictionConfidenceAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListAllocationsForPredictions"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(predictionIDs))
	for _, id := range predictionIDs {
		wanted[id] = true
	}
	var allocations []domain.PredictionConfidenceAllocation
	for _, allocation := range s.Allocations {
		if wanted[allocation.PredictionID] {
			allocations = append(allocations, allocation)
		}
	}
	return allocations, nil
}

// Score

func (s *Store) InsertScoreEntry(ctx context.Context, entry *domain.ScoreEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertScoreEntry"); err != nil {
		return false, err
	}
	for _, existing := range s.ScoreEntries {
		if existing.UserID == entry.UserID &&
			existing.SessionID == entry.SessionID &&
			equalPtr(existing.QuestionInstanceID, entry.QuestionInstanceID) &&
			existing.Reason == entry.Reason {
			return false, nil
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.ScoreEntries = append(s.ScoreEntries, *entry)
	return true, nil
}

func (s *Store) ListScoreEntries(ctx context.Context, sessionID, reason string) ([]domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []domain.ScoreEntry
	for _, entry := range s.ScoreEntries {
		if entry.SessionID == sessionID && entry.Reason == reason {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *Store) CountScoreEntries(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, entry := range s.ScoreEntries {
		if entry.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// Leaderboard

func (s *Store) GlobalTotals(ctx context.Context) ([]domain.LeaderboardRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GlobalTotals"); err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal)
	for _, entry := range s.ScoreEntries {
		totals[entry.UserID] = totals[entry.UserID].Add(entry.AwardedPoints)
	}
	return s.rowsFromTotals(totals), nil
}

func (s *Store) LeagueTotals(ctx context.Context, leagueID string) ([]domain.LeaderboardRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("LeagueTotals"); err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal)
	for _, member := range s.LeagueMembers {
		if member.LeagueID == leagueID {
			totals[member.UserID] = decimal.Zero
		}
	}
	for _, entry := range s.ScoreEntries {
		if _, ok := totals[entry.UserID]; ok {
			totals[entry.UserID] = totals[entry.UserID].Add(entry.AwardedPoints)
		}
	}
	return s.rowsFromTotals(totals), nil
}

// rowsFromTotals sorts by total descending then user id ascending, same as
// the postgres queries. Caller must hold the lock.
func (s *Store) rowsFromTotals(totals map[string]decimal.Decimal) []domain.LeaderboardRow {
	rows := make([]domain.LeaderboardRow, 0, len(totals))
	for userID, total := range totals {
		username := userID
		if profile, ok := s.Profiles[userID]; ok {
			username = profile.Username
		}
		rows = append(rows, domain.LeaderboardRow{
			UserID:      userID,
			Username:    username,
			TotalPoints: total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalPoints.Equal(rows[j].TotalPoints) {
			return rows[i].TotalPoints.GreaterThan(rows[j].TotalPoints)
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows
}

func (s *Store) UpsertLeaderboardSnapshot(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertLeaderboardSnapshot"); err != nil {
		return err
	}
	for i, existing := range s.Snapshots {
		if existing.Scope == snapshot.Scope &&
			equalPtr(existing.ScopeID, snapshot.ScopeID) &&
			equalPtr(existing.SessionID, snapshot.SessionID) {
			s.Snapshots[i] = *snapshot
			return nil
		}
	}
	s.Snapshots = append(s.Snapshots, *snapshot)
	return nil
}

func (s *Store) InsertLeagueSnapshot(ctx context.Context, snapshot *domain.LeagueSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertLeagueSnapshot"); err != nil {
		return err
	}
	s.LeagueSnapshots = append(s.LeagueSnapshots, *snapshot)
	return nil
}

// League

func (s *Store) ListLeagueIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListLeagueIDs"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.Leagues))
	for id := range s.Leagues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) InsertLeague(ctx context.Context, league *domain.League) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Leagues[league.ID] = league
	return nil
}

func (s *Store) InsertLeagueMember(ctx context.Context, member *domain.LeagueMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LeagueMembers = append(s.LeagueMembers, *member)
	return nil
}

// JobRun

func (s *Store) GetJobRunByKey(ctx context.Context, idempotencyKey string) (*domain.JobRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetJobRunByKey"); err != nil {
		return nil, err
	}
	run, ok := s.JobRuns[idempotencyKey]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

func (s *Store) UpsertJobRun(ctx context.Context, run *domain.JobRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertJobRun"); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.JobRuns[run.IdempotencyKey] = run
	return nil
}

// ProviderSync

func (s *Store) InsertProviderSyncLog(ctx context.Context, log *domain.ProviderSyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertProviderSyncLog"); err != nil {
		return err
	}
	s.SyncLogs = append(s.SyncLogs, *log)
	return nil
}

// User

func (s *Store) InsertUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[user.ID] = user
	return nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Profiles[profile.UserID] = profile
	return nil
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
