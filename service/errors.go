package service

import "errors"

// Business errors. Handlers map these onto HTTP statuses; nothing below the
// transport boundary knows about status codes.
var (
	ErrVotingNotFound = errors.New("voting not found")
	ErrOptionNotFound = errors.New("option not found in this voting")
	ErrUserNotFound   = errors.New("user not found")

	// ErrVotingClosed rejects a cast on an inactive voting.
	ErrVotingClosed = errors.New("voting is closed")

	// ErrVotingAlreadyClosed rejects closing a voting twice.
	ErrVotingAlreadyClosed = errors.New("voting is already closed")

	// ErrAlreadyVoted rejects a second vote by the same user in the same
	// voting, whether detected up front or by the storage constraint.
	ErrAlreadyVoted = errors.New("user has already voted in this voting")

	// ErrNotCreator rejects update/close/delete by anyone but the voting's
	// recorded creator.
	ErrNotCreator = errors.New("only the creator may modify this voting")

	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation wraps input-shape failures caught before storage is
	// touched. Use fmt.Errorf("%w: detail", ErrValidation).
	ErrValidation = errors.New("validation failed")
)
