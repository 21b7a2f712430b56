package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"votapp-backend/models"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// maxCodeAttempts bounds the collision retry loop. With 36^6 possible
	// codes a handful of retries is already astronomically safe.
	maxCodeAttempts = 10
)

// ErrCodeExhausted is returned when no unique join code could be generated
// within the attempt bound.
var ErrCodeExhausted = errors.New("could not generate a unique voting code")

// VotingRepository defines persistence operations for votings and their
// options. Reads return (nil, nil) on absence.
type VotingRepository interface {
	// Create persists a new voting with a freshly generated unique join
	// code and one zero-counter option per text, all in one transaction.
	Create(ctx context.Context, voting *models.Voting, optionTexts []string) error
	FindByID(ctx context.Context, id string) (*models.Voting, error)
	FindByCode(ctx context.Context, code string) (*models.Voting, error)
	FindAll(ctx context.Context) ([]models.Voting, error)
	FindActive(ctx context.Context) ([]models.Voting, error)
	FindByCreator(ctx context.Context, creatorID string) ([]models.Voting, error)
	Update(ctx context.Context, voting *models.Voting) error
	// Close deactivates the voting and records the close timestamp.
	Close(ctx context.Context, id string) (*models.Voting, error)
	// Delete removes the voting, its options and its votes in one
	// transaction.
	Delete(ctx context.Context, id string) error
}

type gormVotingRepository struct {
	db *gorm.DB
}

// NewVotingRepository creates a GORM-backed VotingRepository.
func NewVotingRepository(db *gorm.DB) VotingRepository {
	return &gormVotingRepository{db: db}
}

func (r *gormVotingRepository) Create(ctx context.Context, voting *models.Voting, optionTexts []string) error {
	code, err := r.generateUniqueCode(ctx)
	if err != nil {
		return err
	}

	voting.ID = uuid.NewString()
	voting.Code = code
	voting.IsActive = true
	voting.Options = make([]models.Option, len(optionTexts))
	for i, text := range optionTexts {
		voting.Options[i] = models.Option{
			ID:       uuid.NewString(),
			VotingID: voting.ID,
			Text:     text,
			Votes:    0,
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(voting).Error
	})
}

func (r *gormVotingRepository) FindByID(ctx context.Context, id string) (*models.Voting, error) {
	var voting models.Voting
	err := r.db.WithContext(ctx).Preload("Options").First(&voting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voting, nil
}

func (r *gormVotingRepository) FindByCode(ctx context.Context, code string) (*models.Voting, error) {
	var voting models.Voting
	err := r.db.WithContext(ctx).Preload("Options").
		First(&voting, "code = ?", strings.ToUpper(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voting, nil
}

func (r *gormVotingRepository) FindAll(ctx context.Context) ([]models.Voting, error) {
	var votings []models.Voting
	err := r.db.WithContext(ctx).Preload("Options").
		Order("created_at desc").Find(&votings).Error
	if err != nil {
		return nil, err
	}
	return votings, nil
}

func (r *gormVotingRepository) FindActive(ctx context.Context) ([]models.Voting, error) {
	var votings []models.Voting
	err := r.db.WithContext(ctx).Preload("Options").
		Where("is_active = ?", true).
		Order("created_at desc").Find(&votings).Error
	if err != nil {
		return nil, err
	}
	return votings, nil
}

func (r *gormVotingRepository) FindByCreator(ctx context.Context, creatorID string) ([]models.Voting, error) {
	var votings []models.Voting
	err := r.db.WithContext(ctx).Preload("Options").
		Where("created_by = ?", creatorID).
		Order("created_at desc").Find(&votings).Error
	if err != nil {
		return nil, err
	}
	return votings, nil
}

func (r *gormVotingRepository) Update(ctx context.Context, voting *models.Voting) error {
	return r.db.WithContext(ctx).Omit("Options").Save(voting).Error
}

func (r *gormVotingRepository) Close(ctx context.Context, id string) (*models.Voting, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Voting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active": false,
			"closed_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *gormVotingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("voting_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("voting_id = ?", id).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Voting{}, "id = ?", id).Error
	})
}

// generateUniqueCode draws random 6-character codes until one is free in the
// store. Uniqueness is ultimately guaranteed by the unique index on code;
// the pre-check just keeps the common path free of constraint errors.
func (r *gormVotingRepository) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}

		var count int64
		err = r.db.WithContext(ctx).Model(&models.Voting{}).
			Where("code = ?", code).Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
