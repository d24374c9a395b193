package game

// Team is one side's roster: fixed slot array with parallel spawn/kill
// counters and the running total of value its members deposited.
type Team struct {
	Players           [MaxPlayersPerTeam]Identity
	PlayerSpawns      [MaxPlayersPerTeam]uint16
	PlayerKills       [MaxPlayersPerTeam]uint16
	TotalContribution uint64
}

// EmptySlot returns the first unoccupied index within the active capacity.
func (t *Team) EmptySlot(capacity int) (int, error) {
	if capacity < 1 || capacity > MaxPlayersPerTeam {
		return 0, ErrInvalidTeam
	}
	for i := 0; i < capacity; i++ {
		if t.Players[i].IsZero() {
			return i, nil
		}
	}
	return 0, ErrTeamFull
}

func (t *Team) IsFull(capacity int) bool {
	_, err := t.EmptySlot(capacity)
	return err != nil
}

func (t *Team) Contains(player Identity, capacity int) bool {
	_, ok := t.IndexOf(player, capacity)
	return ok
}

func (t *Team) IndexOf(player Identity, capacity int) (int, bool) {
	if player.IsZero() {
		return 0, false
	}
	for i := 0; i < capacity && i < MaxPlayersPerTeam; i++ {
		if t.Players[i] == player {
			return i, true
		}
	}
	return 0, false
}

func (t *Team) ActiveCount(capacity int) int {
	n := 0
	for i := 0; i < capacity && i < MaxPlayersPerTeam; i++ {
		if !t.Players[i].IsZero() {
			n++
		}
	}
	return n
}

func (t *Team) TotalKills(capacity int) uint32 {
	var total uint32
	for i := 0; i < capacity && i < MaxPlayersPerTeam; i++ {
		total += uint32(t.PlayerKills[i])
	}
	return total
}

func (t *Team) TotalSpawns(capacity int) uint32 {
	var total uint32
	for i := 0; i < capacity && i < MaxPlayersPerTeam; i++ {
		total += uint32(t.PlayerSpawns[i])
	}
	return total
}

// IsEliminated reports whether every occupied slot is out of spawns.
// Vacuously true for an empty roster; callers must guard that case.
func (t *Team) IsEliminated(capacity int) bool {
	for i := 0; i < capacity && i < MaxPlayersPerTeam; i++ {
		if !t.Players[i].IsZero() && t.PlayerSpawns[i] > 0 {
			return false
		}
	}
	return true
}

func (t *Team) clearSlot(i int) {
	t.Players[i] = Identity{}
	t.PlayerSpawns[i] = 0
	t.PlayerKills[i] = 0
}
