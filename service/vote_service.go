package service

import (
	"context"
	"errors"

	"votapp-backend/models"
	"votapp-backend/repository"
)

// VoteService orchestrates vote casting and result reads. Casting is the one
// operation in the system with a real correctness burden: each user votes at
// most once per voting, and counters never drift from the stored votes.
type VoteService struct {
	votes   repository.VoteRepository
	votings repository.VotingRepository
	users   repository.UserRepository
}

// NewVoteService creates a VoteService.
func NewVoteService(votes repository.VoteRepository, votings repository.VotingRepository, users repository.UserRepository) *VoteService {
	return &VoteService{votes: votes, votings: votings, users: users}
}

// CastVote validates and persists a single vote. Preconditions are checked
// in order and the first failure wins:
//
//  1. the voting exists
//  2. the voting is still active
//  3. the option belongs to the voting
//  4. the user has not voted in it yet
//
// The checks are advisory under concurrency; the decisive guard is the
// unique (voting, user) index enforced when the vote row is inserted. Two
// concurrent casts for the same pair both pass check 4, and the storage
// constraint fails exactly one of them.
func (s *VoteService) CastVote(ctx context.Context, votingID, optionID, userID string) (*models.Vote, error) {
	voting, err := s.votings.FindByID(ctx, votingID)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}

	if !voting.IsActive {
		return nil, ErrVotingClosed
	}

	optionExists := false
	for _, opt := range voting.Options {
		if opt.ID == optionID {
			optionExists = true
			break
		}
	}
	if !optionExists {
		return nil, ErrOptionNotFound
	}

	hasVoted, err := s.users.HasVotedIn(ctx, userID, votingID)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, ErrAlreadyVoted
	}

	vote := &models.Vote{
		VotingID: votingID,
		OptionID: optionID,
		UserID:   userID,
	}
	if err := s.votes.Cast(ctx, vote); err != nil {
		if errors.Is(err, repository.ErrDuplicateVote) {
			return nil, ErrAlreadyVoted
		}
		if errors.Is(err, repository.ErrOptionGone) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}
	return vote, nil
}

// GetResults returns a voting with its current counters and percentages.
func (s *VoteService) GetResults(ctx context.Context, votingID string) (*models.VotingResults, error) {
	voting, err := s.votings.FindByID(ctx, votingID)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}
	return models.CalculateResults(voting), nil
}

// GetResultsByCode returns results looked up by join code.
func (s *VoteService) GetResultsByCode(ctx context.Context, code string) (*models.VotingResults, error) {
	voting, err := s.votings.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}
	return models.CalculateResults(voting), nil
}

// HasUserVoted reports whether the user already voted in the voting,
// consulting the authoritative per-user record.
func (s *VoteService) HasUserVoted(ctx context.Context, userID, votingID string) (bool, error) {
	return s.users.HasVotedIn(ctx, userID, votingID)
}

// GetUserVotes returns all votes cast by a user, newest first.
func (s *VoteService) GetUserVotes(ctx context.Context, userID string) ([]models.Vote, error) {
	return s.votes.FindByUser(ctx, userID)
}

// GetVotingVotes returns every vote of a voting, for the creator's audit
// view only.
func (s *VoteService) GetVotingVotes(ctx context.Context, votingID, requesterID string) ([]models.Vote, error) {
	voting, err := s.votings.FindByID(ctx, votingID)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}
	if voting.CreatedBy != "" && voting.CreatedBy != requesterID {
		return nil, ErrNotCreator
	}
	return s.votes.FindByVoting(ctx, votingID)
}
