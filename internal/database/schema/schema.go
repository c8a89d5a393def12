package schema

// SchemaSQL contains the full database schema initialization script.
// The unique constraints on score_entries, job_runs, predictions and
// leaderboard_snapshots are load-bearing: they are the storage-level
// authority for idempotency, not just application-level checks.
const SchemaSQL = `
-- Users & Profiles

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(320) UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    username VARCHAR(50) UNIQUE NOT NULL,
    avatar_url VARCHAR(500),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Season / event / session catalog

CREATE TABLE IF NOT EXISTS seasons (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    year INTEGER UNIQUE NOT NULL,
    is_current BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    season_id UUID NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
    external_id VARCHAR(40),
    name VARCHAR(120) NOT NULL,
    slug VARCHAR(120) UNIQUE NOT NULL,
    country VARCHAR(80) NOT NULL,
    start_at TIMESTAMPTZ NOT NULL,
    end_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_events_season ON events(season_id);
CREATE INDEX IF NOT EXISTS idx_events_external ON events(external_id);

CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    external_id VARCHAR(40),
    provider_name VARCHAR(40),
    name VARCHAR(120) NOT NULL,
    session_type VARCHAR(20) NOT NULL,
    state VARCHAR(12) NOT NULL DEFAULT 'SCHEDULED',
    starts_at TIMESTAMPTZ NOT NULL,
    lock_at TIMESTAMPTZ NOT NULL,
    ends_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sessions_event ON sessions(event_id);
CREATE INDEX IF NOT EXISTS idx_sessions_state ON sessions(state);
CREATE INDEX IF NOT EXISTS idx_sessions_ends_at ON sessions(ends_at);

-- Questions & scoring rules

CREATE TABLE IF NOT EXISTS scoring_rules (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(120) UNIQUE NOT NULL,
    question_type VARCHAR(30) NOT NULL,
    base_points INTEGER NOT NULL,
    created_by UUID REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scoring_rules_type ON scoring_rules(question_type);

CREATE TABLE IF NOT EXISTS question_instances (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    question_type VARCHAR(30) NOT NULL,
    prompt VARCHAR(500) NOT NULL,
    options JSONB NOT NULL,
    lock_at TIMESTAMPTZ NOT NULL,
    scoring_rule_id UUID NOT NULL REFERENCES scoring_rules(id),
    correct_option VARCHAR(120),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_question_instances_session ON question_instances(session_id);

-- Predictions

CREATE TABLE IF NOT EXISTS predictions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    client_version VARCHAR(40),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, session_id)
);
CREATE INDEX IF NOT EXISTS idx_predictions_session ON predictions(session_id);

CREATE TABLE IF NOT EXISTS prediction_answers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    prediction_id UUID NOT NULL REFERENCES predictions(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    question_instance_id UUID NOT NULL REFERENCES question_instances(id) ON DELETE CASCADE,
    selected_option VARCHAR(120) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, question_instance_id)
);
CREATE INDEX IF NOT EXISTS idx_prediction_answers_prediction ON prediction_answers(prediction_id);

CREATE TABLE IF NOT EXISTS prediction_confidence_allocations (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    prediction_id UUID NOT NULL REFERENCES predictions(id) ON DELETE CASCADE,
    question_instance_id UUID NOT NULL REFERENCES question_instances(id) ON DELETE CASCADE,
    credits INTEGER NOT NULL CHECK (credits >= 0),
    UNIQUE (prediction_id, question_instance_id)
);

-- Score ledger

CREATE TABLE IF NOT EXISTS score_entries (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id),
    session_id UUID NOT NULL REFERENCES sessions(id),
    question_instance_id UUID REFERENCES question_instances(id),
    base_points NUMERIC(10,2) NOT NULL DEFAULT 0,
    confidence_multiplier NUMERIC(10,2) NOT NULL DEFAULT 1,
    awarded_points NUMERIC(10,2) NOT NULL DEFAULT 0,
    reason VARCHAR(120) NOT NULL DEFAULT 'SESSION_SCORE',
    initiated_by VARCHAR(120) NOT NULL DEFAULT '',
    prediction_id UUID,
    scoring_rule_id UUID,
    credits INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT uq_score_entry_reason
        UNIQUE NULLS NOT DISTINCT (user_id, session_id, question_instance_id, reason)
);
CREATE INDEX IF NOT EXISTS idx_score_entries_user ON score_entries(user_id);
CREATE INDEX IF NOT EXISTS idx_score_entries_session ON score_entries(session_id);

-- Leagues

CREATE TABLE IF NOT EXISTS leagues (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(120) NOT NULL,
    visibility VARCHAR(12) NOT NULL DEFAULT 'PRIVATE',
    join_policy VARCHAR(20) NOT NULL DEFAULT 'INVITE_ONLY',
    invite_code VARCHAR(12) UNIQUE,
    created_by UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS league_members (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    league_id UUID NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role VARCHAR(12) NOT NULL DEFAULT 'MEMBER',
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (league_id, user_id)
);

-- Leaderboard snapshots

CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    scope VARCHAR(12) NOT NULL,
    scope_id UUID,
    session_id UUID REFERENCES sessions(id),
    computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    rows_json JSONB NOT NULL,
    CONSTRAINT uq_leaderboard_snapshot_key
        UNIQUE NULLS NOT DISTINCT (scope, scope_id, session_id)
);

CREATE TABLE IF NOT EXISTS league_snapshots (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    league_id UUID NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
    computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    rows_json JSONB NOT NULL
);

-- Job ledger & provider sync logs

CREATE TABLE IF NOT EXISTS job_runs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    idempotency_key VARCHAR(120) NOT NULL,
    job_type VARCHAR(80) NOT NULL,
    status VARCHAR(12) NOT NULL DEFAULT 'PENDING',
    payload_json JSONB NOT NULL DEFAULT '{}',
    result_json JSONB NOT NULL DEFAULT '{}',
    error_message TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at TIMESTAMPTZ,
    CONSTRAINT uq_job_run_idempotency UNIQUE (idempotency_key)
);
CREATE INDEX IF NOT EXISTS idx_job_runs_type ON job_runs(job_type);

CREATE TABLE IF NOT EXISTS provider_sync_logs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    provider_name VARCHAR(40) NOT NULL,
    resource VARCHAR(40) NOT NULL,
    status VARCHAR(12) NOT NULL,
    details TEXT,
    started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_provider_sync_logs_provider ON provider_sync_logs(provider_name);
`
