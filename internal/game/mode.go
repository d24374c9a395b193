package game

import "fmt"

// Mode selects team size and payout economy. Immutable once a session exists.
type Mode uint8

const (
	ModeWinnerTakesAll1v1 Mode = iota
	ModeWinnerTakesAll3v3
	ModeWinnerTakesAll5v5
	ModePayToSpawn1v1
	ModePayToSpawn3v3
	ModePayToSpawn5v5
)

const (
	// MaxPlayersPerTeam is the roster capacity; modes use a prefix of it.
	MaxPlayersPerTeam = 5
	// DefaultSpawnCount is the starting spawn count in pay-to-spawn modes.
	DefaultSpawnCount uint16 = 10
)

var modeNames = map[Mode]string{
	ModeWinnerTakesAll1v1: "winner_takes_all_1v1",
	ModeWinnerTakesAll3v3: "winner_takes_all_3v3",
	ModeWinnerTakesAll5v5: "winner_takes_all_5v5",
	ModePayToSpawn1v1:     "pay_to_spawn_1v1",
	ModePayToSpawn3v3:     "pay_to_spawn_3v3",
	ModePayToSpawn5v5:     "pay_to_spawn_5v5",
}

func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

func (m Mode) PlayersPerTeam() int {
	switch m {
	case ModeWinnerTakesAll1v1, ModePayToSpawn1v1:
		return 1
	case ModeWinnerTakesAll3v3, ModePayToSpawn3v3:
		return 3
	case ModeWinnerTakesAll5v5, ModePayToSpawn5v5:
		return 5
	}
	return 0
}

// PayToSpawn reports whether the mode uses the pooled spawn economy.
func (m Mode) PayToSpawn() bool {
	switch m {
	case ModePayToSpawn1v1, ModePayToSpawn3v3, ModePayToSpawn5v5:
		return true
	}
	return false
}

func (m Mode) DefaultSpawnCount() uint16 {
	if m.PayToSpawn() {
		return DefaultSpawnCount
	}
	return 1
}
