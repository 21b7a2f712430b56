package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"votapp-backend/models"
	"votapp-backend/repository"
)

const (
	minOptions = 2
	maxOptions = 10
)

// VotingService manages the poll lifecycle: create, lookup, update, close,
// delete. Mutations are restricted to the recorded creator.
type VotingService struct {
	votings repository.VotingRepository
}

// NewVotingService creates a VotingService.
func NewVotingService(votings repository.VotingRepository) *VotingService {
	return &VotingService{votings: votings}
}

// Create validates the input and persists a new active voting owned by
// creatorID, with a fresh unique join code.
func (s *VotingService) Create(ctx context.Context, input models.CreateVotingInput, creatorID string) (*models.Voting, error) {
	title := strings.TrimSpace(input.Title)
	if len(title) < 5 || len(title) > 200 {
		return nil, fmt.Errorf("%w: title must be between 5 and 200 characters", ErrValidation)
	}

	description := strings.TrimSpace(input.Description)
	if len(description) > 500 {
		return nil, fmt.Errorf("%w: description must not exceed 500 characters", ErrValidation)
	}

	options, err := cleanOptions(input.Options)
	if err != nil {
		return nil, err
	}

	voting := &models.Voting{
		Title:       title,
		Description: description,
		CreatedBy:   creatorID,
	}
	if err := s.votings.Create(ctx, voting, options); err != nil {
		return nil, err
	}
	return voting, nil
}

// GetAll returns every voting, newest first.
func (s *VotingService) GetAll(ctx context.Context) ([]models.Voting, error) {
	return s.votings.FindAll(ctx)
}

// GetActive returns only votings still accepting votes.
func (s *VotingService) GetActive(ctx context.Context) ([]models.Voting, error) {
	return s.votings.FindActive(ctx)
}

// GetByID looks a voting up by its identifier.
func (s *VotingService) GetByID(ctx context.Context, id string) (*models.Voting, error) {
	voting, err := s.votings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}
	return voting, nil
}

// GetByCode looks a voting up by its join code, case-insensitively.
func (s *VotingService) GetByCode(ctx context.Context, code string) (*models.Voting, error) {
	voting, err := s.votings.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}
	return voting, nil
}

// GetByCreator returns the votings created by the given admin.
func (s *VotingService) GetByCreator(ctx context.Context, creatorID string) ([]models.Voting, error) {
	return s.votings.FindByCreator(ctx, creatorID)
}

// Update applies the provided fields to a voting owned by userID.
func (s *VotingService) Update(ctx context.Context, id string, input models.UpdateVotingInput, userID string) (*models.Voting, error) {
	voting, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 5 || len(title) > 200 {
			return nil, fmt.Errorf("%w: title must be between 5 and 200 characters", ErrValidation)
		}
		voting.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if len(description) > 500 {
			return nil, fmt.Errorf("%w: description must not exceed 500 characters", ErrValidation)
		}
		voting.Description = description
	}
	if input.IsActive != nil && *input.IsActive != voting.IsActive {
		voting.IsActive = *input.IsActive
		// ClosedAt tracks the active flag: closing through an update
		// records the close time, reopening clears it.
		if voting.IsActive {
			voting.ClosedAt = nil
		} else {
			now := time.Now()
			voting.ClosedAt = &now
		}
	}

	if err := s.votings.Update(ctx, voting); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Close deactivates a voting owned by userID and records the close time.
// Closing never deletes data; results remain readable.
func (s *VotingService) Close(ctx context.Context, id, userID string) (*models.Voting, error) {
	voting, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !voting.IsActive {
		return nil, ErrVotingAlreadyClosed
	}

	closed, err := s.votings.Close(ctx, id)
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, ErrVotingNotFound
	}
	return closed, nil
}

// Delete removes a voting owned by userID together with its votes.
func (s *VotingService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.loadOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.votings.Delete(ctx, id)
}

// loadOwned fetches a voting and enforces the creator restriction. Votings
// without a recorded creator are mutable by any admin, matching the data
// migrated from before creators were tracked.
func (s *VotingService) loadOwned(ctx context.Context, id, userID string) (*models.Voting, error) {
	voting, err := s.votings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voting == nil {
		return nil, ErrVotingNotFound
	}
	if voting.CreatedBy != "" && voting.CreatedBy != userID {
		return nil, ErrNotCreator
	}
	return voting, nil
}

// cleanOptions trims, drops empties, and rejects duplicates or counts
// outside [2, 10].
func cleanOptions(raw []string) ([]string, error) {
	options := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, text := range raw {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if seen[text] {
			return nil, fmt.Errorf("%w: duplicate option %q", ErrValidation, text)
		}
		seen[text] = true
		options = append(options, text)
	}

	if len(options) < minOptions {
		return nil, fmt.Errorf("%w: at least %d non-empty options required", ErrValidation, minOptions)
	}
	if len(options) > maxOptions {
		return nil, fmt.Errorf("%w: at most %d options allowed", ErrValidation, maxOptions)
	}
	return options, nil
}
