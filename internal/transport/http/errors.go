package httptransport

import (
	"errors"
	"net/http"

	"wager-arena/internal/arena"
	"wager-arena/internal/game"
	"wager-arena/internal/payout"
	"wager-arena/internal/store"
	"wager-arena/internal/vault"
)

// writeDomainError maps a domain error to an HTTP status and the sentinel's
// snake_case code. Unknown errors are never echoed to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, arena.ErrSessionNotFound),
		errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, game.ErrUnauthorized):
		WriteHTTPError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, game.ErrInvalidIdentity),
		errors.Is(err, game.ErrInvalidMode),
		errors.Is(err, game.ErrInvalidTeam),
		errors.Is(err, game.ErrSessionIDTooShort),
		errors.Is(err, game.ErrSessionIDTooLong),
		errors.Is(err, game.ErrInvalidSessionID),
		errors.Is(err, game.ErrBetTooLow),
		errors.Is(err, game.ErrBetTooHigh),
		errors.Is(err, game.ErrInvalidExtension),
		errors.Is(err, game.ErrInvalidSpawnCount),
		errors.Is(err, game.ErrSelfKill):
		WriteHTTPError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, game.ErrWrongStatus),
		errors.Is(err, game.ErrSessionExpired),
		errors.Is(err, game.ErrNotInProgress),
		errors.Is(err, game.ErrAlreadyStarted),
		errors.Is(err, game.ErrTeamFull),
		errors.Is(err, game.ErrAlreadyJoined),
		errors.Is(err, game.ErrNoSpawnsLeft),
		errors.Is(err, game.ErrMaxSpawns),
		errors.Is(err, game.ErrWrongMode),
		errors.Is(err, game.ErrSpawnsDisabled),
		errors.Is(err, arena.ErrSessionExists),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, payout.ErrNoActiveWinners):
		WriteHTTPError(w, http.StatusConflict, err.Error())

	case errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, vault.ErrInsufficientFunds),
		errors.Is(err, payout.ErrInsufficientVaultBalance):
		WriteHTTPError(w, http.StatusPaymentRequired, err.Error())

	case errors.Is(err, payout.ErrDistributionPartialFailure),
		errors.Is(err, vault.ErrTransferVerificationFailed),
		errors.Is(err, vault.ErrInvalidWinnerAccount),
		errors.Is(err, game.ErrArithmetic):
		WriteHTTPError(w, http.StatusInternalServerError, err.Error())

	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
