package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"votapp-backend/models"
)

var (
	// ErrDuplicateVote is returned when the (voting, user) pair already has
	// a persisted vote. This is how a lost race between two concurrent
	// casts for the same pair surfaces: the second insert violates the
	// unique index and fails here instead of double-counting.
	ErrDuplicateVote = errors.New("user already voted in this voting")

	// ErrOptionGone is returned when the counter update matched no row,
	// meaning the option was removed between validation and commit.
	ErrOptionGone = errors.New("option no longer exists")
)

// VoteRepository defines persistence operations for votes.
type VoteRepository interface {
	// Cast persists the vote and applies its side effects in a single
	// transaction: insert the vote row, atomically increment the option's
	// counter, and record the voting in the user's voted-in set. Either
	// all three commit or none do.
	Cast(ctx context.Context, vote *models.Vote) error
	FindByUser(ctx context.Context, userID string) ([]models.Vote, error)
	FindByVoting(ctx context.Context, votingID string) ([]models.Vote, error)
	HasUserVoted(ctx context.Context, userID, votingID string) (bool, error)
	CountByOption(ctx context.Context, votingID, optionID string) (int64, error)
}

type gormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a GORM-backed VoteRepository.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &gormVoteRepository{db: db}
}

func (r *gormVoteRepository) Cast(ctx context.Context, vote *models.Vote) error {
	vote.ID = uuid.NewString()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateVote
			}
			return err
		}

		// The increment happens in SQL, not read-modify-write, so
		// concurrent votes for the same option never lose a count.
		result := tx.Model(&models.Option{}).
			Where("id = ? AND voting_id = ?", vote.OptionID, vote.VotingID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOptionGone
		}

		entry := models.UserVoted{UserID: vote.UserID, VotingID: vote.VotingID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	})
}

func (r *gormVoteRepository) FindByUser(ctx context.Context, userID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *gormVoteRepository) FindByVoting(ctx context.Context, votingID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("voting_id = ?", votingID).
		Order("created_at asc").Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *gormVoteRepository) HasUserVoted(ctx context.Context, userID, votingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND voting_id = ?", userID, votingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormVoteRepository) CountByOption(ctx context.Context, votingID, optionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("voting_id = ? AND option_id = ?", votingID, optionID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
