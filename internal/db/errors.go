package db

import "errors"

// Domain-level database error sentinels.
var (
	// Media item errors
	ErrMediaItemNotFound = errors.New("media item not found")
	// ErrAlreadyRemoved signals a lost claim race: another caller already
	// transitioned the item to removed.
	ErrAlreadyRemoved = errors.New("media item already removed")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Vote errors
	ErrVoteNotFound = errors.New("vote not found")

	// Review round errors
	ErrRoundNotFound = errors.New("review round not found")
	ErrNoActiveRound = errors.New("no active review round")
	// ErrActiveRoundExists is a conflict, not a validation failure: callers
	// may react by prompting to close the existing round.
	ErrActiveRoundExists = errors.New("an active review round already exists")

	// Review action errors
	ErrActionNotFound = errors.New("review action not found")
)
