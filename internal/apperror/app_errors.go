package apperror

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrUserNotFound = errors.New("user not found")

	ErrGameNotJoinable = errors.New("game has already started or finished")
	ErrGameFull        = errors.New("game already has the maximum number of players")
	ErrAlreadyInGame   = errors.New("you are already a participant of this game")
	ErrGameNotActive   = errors.New("game is not active")
	ErrInvalidPosition = errors.New("invalid position for a move")
	ErrNotInGame       = errors.New("you are not a participant of this game")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")

	ErrUsernameTaken = errors.New("username is already taken")
	ErrSameUsername  = errors.New("new username must differ from the current one")
	ErrSamePassword  = errors.New("new password must differ from the current one")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

var conflictErrors = []error{
	ErrGameNotJoinable,
	ErrGameFull,
	ErrAlreadyInGame,
	ErrGameNotActive,
	ErrInvalidPosition,
	ErrNotInGame,
	ErrNotYourTurn,
	ErrCellOccupied,
	ErrUsernameTaken,
	ErrSameUsername,
	ErrSamePassword,
}

// IsNotFound - reports whether err refers to a missing game or user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGameNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsConflict - reports whether err is a domain rule violation.
func IsConflict(err error) bool {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInvalidToken)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrWrongPassword)
}
