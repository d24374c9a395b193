package game

import "errors"

var (
	// Validation failures, rejected before any state mutation.
	ErrInvalidIdentity   = errors.New("invalid_identity")
	ErrInvalidMode       = errors.New("invalid_mode")
	ErrInvalidTeam       = errors.New("invalid_team")
	ErrSessionIDTooShort = errors.New("session_id_too_short")
	ErrSessionIDTooLong  = errors.New("session_id_too_long")
	ErrInvalidSessionID  = errors.New("invalid_session_id_format")
	ErrBetTooLow         = errors.New("bet_amount_too_low")
	ErrBetTooHigh        = errors.New("bet_amount_too_high")
	ErrInvalidExtension  = errors.New("invalid_extension_time")
	ErrInvalidSpawnCount = errors.New("invalid_spawn_count")
	ErrSelfKill          = errors.New("self_kill_not_allowed")
	ErrSpawnsDisabled    = errors.New("spawn_purchases_disabled")

	// State conflicts, legal input against the wrong status or timing.
	ErrWrongStatus    = errors.New("invalid_session_state")
	ErrSessionExpired = errors.New("session_expired")
	ErrNotInProgress  = errors.New("session_not_in_progress")
	ErrAlreadyStarted = errors.New("session_already_started")
	ErrTeamFull       = errors.New("team_full")
	ErrAlreadyJoined  = errors.New("player_already_joined")
	ErrPlayerNotFound = errors.New("player_not_found")
	ErrNoSpawnsLeft   = errors.New("player_has_no_spawns")
	ErrMaxSpawns      = errors.New("max_spawns_exceeded")
	ErrWrongMode      = errors.New("invalid_game_mode")
	ErrUnauthorized   = errors.New("unauthorized")

	// Arithmetic faults abort the single operation that hit them.
	ErrArithmetic = errors.New("arithmetic_overflow")
)
