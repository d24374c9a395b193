package game

import "fmt"

// Status of a session. Transitions are one-way except Extend, which only
// moves the expiry.
type Status uint8

const (
	StatusWaitingForPlayers Status = iota
	StatusInProgress
	StatusCompleted
	StatusDistributed
	StatusExpired
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusWaitingForPlayers: "waiting_for_players",
	StatusInProgress:        "in_progress",
	StatusCompleted:         "completed",
	StatusDistributed:       "distributed",
	StatusExpired:           "expired",
	StatusCancelled:         "cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether no further transition can leave this status.
func (s Status) Terminal() bool {
	return s == StatusDistributed || s == StatusExpired || s == StatusCancelled
}

const (
	MinSessionIDLength = 3
	MaxSessionIDLength = 32

	MinBetAmount uint64 = 1_000
	MaxBetAmount uint64 = 1_000_000_000_000

	// SessionTimeoutSeconds is the initial lifetime granted at creation.
	SessionTimeoutSeconds int64 = 7200
	// MaxExtensionSeconds bounds a single Extend call.
	MaxExtensionSeconds int64 = 86_400

	// MaxSpawnsPerPlayer caps spawn accumulation through purchases.
	MaxSpawnsPerPlayer uint16 = 100
	// MaxSpawnsPerPurchase bounds the configurable purchase increment.
	MaxSpawnsPerPurchase uint16 = 50
)

// Session is the aggregate: identity, authority, stake, two rosters and the
// lifecycle status. All mutating methods re-validate status and expiry before
// touching state; a failed call leaves the session unchanged.
type Session struct {
	ID                string
	Authority         Identity
	BetAmount         uint64
	Mode              Mode
	TeamA             Team
	TeamB             Team
	Status            Status
	CreatedAt         int64
	ExpiresAt         int64
	SpawnsPerPurchase uint16
}

// NewSession validates the id, bet and mode and returns a session waiting for
// players. The expiry is the creation time plus the fixed timeout.
func NewSession(id string, authority Identity, betAmount uint64, mode Mode, now int64) (*Session, error) {
	if err := ValidateSessionID(id); err != nil {
		return nil, err
	}
	if betAmount < MinBetAmount {
		return nil, ErrBetTooLow
	}
	if betAmount > MaxBetAmount {
		return nil, ErrBetTooHigh
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if authority.IsZero() {
		return nil, ErrInvalidIdentity
	}
	expiresAt, err := addI64(now, SessionTimeoutSeconds)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:                id,
		Authority:         authority,
		BetAmount:         betAmount,
		Mode:              mode,
		Status:            StatusWaitingForPlayers,
		CreatedAt:         now,
		ExpiresAt:         expiresAt,
		SpawnsPerPurchase: mode.DefaultSpawnCount(),
	}, nil
}

// ValidateSessionID enforces length 3..32 and charset [A-Za-z0-9_-].
func ValidateSessionID(id string) error {
	if len(id) < MinSessionIDLength {
		return ErrSessionIDTooShort
	}
	if len(id) > MaxSessionIDLength {
		return ErrSessionIDTooLong
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return ErrInvalidSessionID
		}
	}
	return nil
}

func (s *Session) IsExpired(now int64) bool {
	return now >= s.ExpiresAt
}

// checkLive rejects the call when the session has passed its expiry while in
// a pre-terminal status. The status field is updated lazily here: the first
// operation to observe the expiry flips it.
func (s *Session) checkLive(now int64) error {
	if s.Status == StatusExpired {
		return ErrSessionExpired
	}
	if (s.Status == StatusWaitingForPlayers || s.Status == StatusInProgress) && s.IsExpired(now) {
		s.Status = StatusExpired
		return ErrSessionExpired
	}
	return nil
}

func (s *Session) team(team int) (*Team, error) {
	switch team {
	case 0:
		return &s.TeamA, nil
	case 1:
		return &s.TeamB, nil
	}
	return nil, ErrInvalidTeam
}

// EmptySlotFor runs every join guard without mutating: expiry, status, team
// index, duplicate membership across both rosters, and slot availability.
func (s *Session) EmptySlotFor(team int, player Identity, now int64) (int, error) {
	if err := s.checkLive(now); err != nil {
		return 0, err
	}
	if s.Status != StatusWaitingForPlayers {
		return 0, ErrWrongStatus
	}
	t, err := s.team(team)
	if err != nil {
		return 0, err
	}
	if player.IsZero() {
		return 0, ErrInvalidIdentity
	}
	capacity := s.Mode.PlayersPerTeam()
	if s.TeamA.Contains(player, capacity) || s.TeamB.Contains(player, capacity) {
		return 0, ErrAlreadyJoined
	}
	return t.EmptySlot(capacity)
}

// Join places the player in the chosen team's first empty slot, seeds the
// default spawn count and adds the bet to the team's contribution. When the
// insertion fills the last open slot on either roster, the session moves to
// InProgress. The matching escrow deposit is the caller's responsibility and
// must complete before Join is applied.
func (s *Session) Join(team int, player Identity, now int64) (int, error) {
	slot, err := s.EmptySlotFor(team, player, now)
	if err != nil {
		return 0, err
	}
	t, _ := s.team(team)
	newTotal, err := addU64(t.TotalContribution, s.BetAmount)
	if err != nil {
		return 0, err
	}
	t.Players[slot] = player
	t.PlayerSpawns[slot] = s.Mode.DefaultSpawnCount()
	t.PlayerKills[slot] = 0
	t.TotalContribution = newTotal

	capacity := s.Mode.PlayersPerTeam()
	if s.TeamA.IsFull(capacity) && s.TeamB.IsFull(capacity) {
		s.Status = StatusInProgress
	}
	return slot, nil
}

// LeaveRefund validates a leave without mutating and returns the amount the
// caller must return from escrow to the player.
func (s *Session) LeaveRefund(team int, player Identity, now int64) (uint64, error) {
	if err := s.checkLive(now); err != nil {
		return 0, err
	}
	if s.Status != StatusWaitingForPlayers {
		return 0, ErrAlreadyStarted
	}
	t, err := s.team(team)
	if err != nil {
		return 0, err
	}
	if _, ok := t.IndexOf(player, s.Mode.PlayersPerTeam()); !ok {
		return 0, ErrPlayerNotFound
	}
	return s.BetAmount, nil
}

// Leave clears the player's slot and takes the bet back out of the team's
// contribution. Only legal while waiting for players.
func (s *Session) Leave(team int, player Identity, now int64) (uint64, error) {
	refund, err := s.LeaveRefund(team, player, now)
	if err != nil {
		return 0, err
	}
	t, _ := s.team(team)
	idx, _ := t.IndexOf(player, s.Mode.PlayersPerTeam())
	newTotal, err := subU64(t.TotalContribution, refund)
	if err != nil {
		return 0, err
	}
	t.clearSlot(idx)
	t.TotalContribution = newTotal
	return refund, nil
}

// RecordKill increments the killer's kill counter and consumes one of the
// victim's spawns. A victim at zero spawns rejects the call; spawn counts
// never go negative. In winner-takes-all modes the session auto-completes
// when the kill eliminates the last opposing spawn.
func (s *Session) RecordKill(killerTeam int, killer Identity, victimTeam int, victim Identity) error {
	if s.Status != StatusInProgress {
		return ErrNotInProgress
	}
	if killer == victim {
		return ErrSelfKill
	}
	kt, err := s.team(killerTeam)
	if err != nil {
		return err
	}
	vt, err := s.team(victimTeam)
	if err != nil {
		return err
	}
	capacity := s.Mode.PlayersPerTeam()
	ki, ok := kt.IndexOf(killer, capacity)
	if !ok {
		return ErrPlayerNotFound
	}
	vi, ok := vt.IndexOf(victim, capacity)
	if !ok {
		return ErrPlayerNotFound
	}
	if vt.PlayerSpawns[vi] == 0 {
		return ErrNoSpawnsLeft
	}
	newKills, err := addU16(kt.PlayerKills[ki], 1)
	if err != nil {
		return err
	}
	kt.PlayerKills[ki] = newKills
	vt.PlayerSpawns[vi]--

	if !s.Mode.PayToSpawn() {
		if _, ok := s.Winner(); ok {
			s.Status = StatusCompleted
		}
	}
	return nil
}

// Winner returns the surviving team index when exactly one team is fully
// eliminated. Empty rosters are eliminated vacuously, so both sides must have
// at least one occupied slot before a winner can exist.
func (s *Session) Winner() (int, bool) {
	capacity := s.Mode.PlayersPerTeam()
	if s.TeamA.ActiveCount(capacity) == 0 || s.TeamB.ActiveCount(capacity) == 0 {
		return 0, false
	}
	aOut := s.TeamA.IsEliminated(capacity)
	bOut := s.TeamB.IsEliminated(capacity)
	switch {
	case aOut && !bOut:
		return 1, true
	case bOut && !aOut:
		return 0, true
	}
	return 0, false
}

// SpawnPurchaseCost validates a spawn purchase without mutating and returns
// the amount the caller must deposit into escrow first.
func (s *Session) SpawnPurchaseCost(team int, player Identity, now int64) (uint64, error) {
	if err := s.checkLive(now); err != nil {
		return 0, err
	}
	if s.Status != StatusInProgress {
		return 0, ErrNotInProgress
	}
	if !s.Mode.PayToSpawn() {
		return 0, ErrWrongMode
	}
	if s.SpawnsPerPurchase == 0 {
		return 0, ErrSpawnsDisabled
	}
	t, err := s.team(team)
	if err != nil {
		return 0, err
	}
	idx, ok := t.IndexOf(player, s.Mode.PlayersPerTeam())
	if !ok {
		return 0, ErrPlayerNotFound
	}
	current := t.PlayerSpawns[idx]
	if current >= MaxSpawnsPerPlayer {
		return 0, ErrMaxSpawns
	}
	next, err := addU16(current, s.SpawnsPerPurchase)
	if err != nil {
		return 0, err
	}
	if next > MaxSpawnsPerPlayer {
		return 0, ErrMaxSpawns
	}
	return s.BetAmount, nil
}

// PurchaseSpawns credits the configured spawn increment to the player and the
// bet to the team's contribution. The escrow deposit is a precondition
// verified by the caller, not here.
func (s *Session) PurchaseSpawns(team int, player Identity, now int64) (uint16, error) {
	if _, err := s.SpawnPurchaseCost(team, player, now); err != nil {
		return 0, err
	}
	t, _ := s.team(team)
	idx, _ := t.IndexOf(player, s.Mode.PlayersPerTeam())
	next, err := addU16(t.PlayerSpawns[idx], s.SpawnsPerPurchase)
	if err != nil {
		return 0, err
	}
	newTotal, err := addU64(t.TotalContribution, s.BetAmount)
	if err != nil {
		return 0, err
	}
	t.PlayerSpawns[idx] = next
	t.TotalContribution = newTotal
	return next, nil
}

// Extend pushes the expiry out by up to 24 hours per call. Authority only,
// and only while the session is still live.
func (s *Session) Extend(caller Identity, additionalSeconds int64) error {
	if caller != s.Authority {
		return ErrUnauthorized
	}
	if s.Status != StatusWaitingForPlayers && s.Status != StatusInProgress {
		return ErrWrongStatus
	}
	if additionalSeconds <= 0 || additionalSeconds > MaxExtensionSeconds {
		return ErrInvalidExtension
	}
	expiresAt, err := addI64(s.ExpiresAt, additionalSeconds)
	if err != nil {
		return err
	}
	s.ExpiresAt = expiresAt
	return nil
}

// Cancel aborts a session that has not started. No funds move here; the
// refund sweep over joined players is the boundary's job.
func (s *Session) Cancel(caller Identity) error {
	if caller != s.Authority {
		return ErrUnauthorized
	}
	if s.Status != StatusWaitingForPlayers {
		return ErrAlreadyStarted
	}
	s.Status = StatusCancelled
	return nil
}

// Settle is the authority's explicit end-of-contest call, moving an
// in-progress session to Completed so winnings can be distributed.
func (s *Session) Settle(caller Identity, now int64) error {
	if caller != s.Authority {
		return ErrUnauthorized
	}
	if err := s.checkLive(now); err != nil {
		return err
	}
	if s.Status != StatusInProgress {
		return ErrNotInProgress
	}
	s.Status = StatusCompleted
	return nil
}

// SetSpawnsPerPurchase reconfigures the purchase increment within [1,50].
func (s *Session) SetSpawnsPerPurchase(caller Identity, n uint16) error {
	if caller != s.Authority {
		return ErrUnauthorized
	}
	if n == 0 || n > MaxSpawnsPerPurchase {
		return ErrInvalidSpawnCount
	}
	s.SpawnsPerPurchase = n
	return nil
}

// DisableSpawnPurchases zeroes the increment; purchases then fail validation.
func (s *Session) DisableSpawnPurchases(caller Identity) error {
	if caller != s.Authority {
		return ErrUnauthorized
	}
	s.SpawnsPerPurchase = 0
	return nil
}

// KillsAndSpawns returns the payout basis for one player in pooled modes.
func (s *Session) KillsAndSpawns(player Identity) (uint16, error) {
	team, idx, err := s.findPlayer(player)
	if err != nil {
		return 0, err
	}
	t, _ := s.team(team)
	return addU16(t.PlayerKills[idx], t.PlayerSpawns[idx])
}

func (s *Session) findPlayer(player Identity) (int, int, error) {
	capacity := s.Mode.PlayersPerTeam()
	if idx, ok := s.TeamA.IndexOf(player, capacity); ok {
		return 0, idx, nil
	}
	if idx, ok := s.TeamB.IndexOf(player, capacity); ok {
		return 1, idx, nil
	}
	return 0, 0, ErrPlayerNotFound
}

// AllPlayers lists every occupied slot, team A first, in slot order.
func (s *Session) AllPlayers() []Identity {
	capacity := s.Mode.PlayersPerTeam()
	players := make([]Identity, 0, 2*capacity)
	for _, t := range []*Team{&s.TeamA, &s.TeamB} {
		for i := 0; i < capacity; i++ {
			if !t.Players[i].IsZero() {
				players = append(players, t.Players[i])
			}
		}
	}
	return players
}

// TeamPlayers lists one roster's occupied slots in slot order.
func (s *Session) TeamPlayers(team int) []Identity {
	t, err := s.team(team)
	if err != nil {
		return nil
	}
	capacity := s.Mode.PlayersPerTeam()
	players := make([]Identity, 0, capacity)
	for i := 0; i < capacity; i++ {
		if !t.Players[i].IsZero() {
			players = append(players, t.Players[i])
		}
	}
	return players
}

// PlayerStats is a read-only per-slot view.
type PlayerStats struct {
	Player Identity
	Team   int
	Slot   int
	Spawns uint16
	Kills  uint16
}

func (s *Session) PlayerStats(player Identity) (PlayerStats, error) {
	team, idx, err := s.findPlayer(player)
	if err != nil {
		return PlayerStats{}, err
	}
	t, _ := s.team(team)
	return PlayerStats{
		Player: player,
		Team:   team,
		Slot:   idx,
		Spawns: t.PlayerSpawns[idx],
		Kills:  t.PlayerKills[idx],
	}, nil
}

// TeamStats aggregates one roster.
type TeamStats struct {
	ActiveCount       int
	TotalKills        uint32
	TotalSpawns       uint32
	TotalContribution uint64
}

func (s *Session) TeamStats(team int) (TeamStats, error) {
	t, err := s.team(team)
	if err != nil {
		return TeamStats{}, err
	}
	capacity := s.Mode.PlayersPerTeam()
	return TeamStats{
		ActiveCount:       t.ActiveCount(capacity),
		TotalKills:        t.TotalKills(capacity),
		TotalSpawns:       t.TotalSpawns(capacity),
		TotalContribution: t.TotalContribution,
	}, nil
}
