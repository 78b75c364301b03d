package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Games

CREATE TABLE IF NOT EXISTS games (
    game_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    scheduled_time TIMESTAMPTZ NOT NULL,
    started_at TIMESTAMPTZ,
    ended_at TIMESTAMPTZ,
    status VARCHAR(20) NOT NULL DEFAULT 'LOBBY',
    created_by UUID NOT NULL,
    prizes JSONB NOT NULL DEFAULT '{}',
    called_numbers INTEGER[] NOT NULL DEFAULT '{}',
    current_number INTEGER,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_games_scheduled_status ON games (scheduled_time, status);

-- Players

CREATE TABLE IF NOT EXISTS players (
    player_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    game_id UUID NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
    user_id UUID NOT NULL,
    user_name VARCHAR(50) NOT NULL DEFAULT '',
    ticket JSONB NOT NULL,
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (game_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_players_game ON players (game_id);

-- Winners

CREATE TABLE IF NOT EXISTS winners (
    winner_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    game_id UUID NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
    player_id UUID NOT NULL REFERENCES players(player_id) ON DELETE CASCADE,
    category VARCHAR(20) NOT NULL,
    claimed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    prize_claimed BOOLEAN NOT NULL DEFAULT FALSE,
    prize_value INTEGER NOT NULL DEFAULT 0,
    UNIQUE (game_id, category)
);

CREATE INDEX IF NOT EXISTS idx_winners_game_category ON winners (game_id, category);

-- Prize distribution queue

CREATE TABLE IF NOT EXISTS prize_queue (
    item_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL,
    game_id UUID NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
    category VARCHAR(20) NOT NULL,
    prize_value INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    attempts INTEGER NOT NULL DEFAULT 0,
    last_attempt TIMESTAMPTZ,
    error TEXT,
    idempotency_key VARCHAR(128) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, game_id, category)
);

CREATE INDEX IF NOT EXISTS idx_prize_queue_status_created ON prize_queue (status, created_at);
`
