package database

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"votapp-backend/auth"
	"votapp-backend/config"
	"votapp-backend/models"
)

// SeedUsers creates the initial accounts when the users table is empty. It
// is idempotent: any existing user skips the whole seed.
func SeedUsers(db *gorm.DB, seeds []config.SeedUser) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("users already present, skipping seed")
		return nil
	}

	for _, seed := range seeds {
		hash, err := auth.HashPassword(seed.Password)
		if err != nil {
			return err
		}
		user := models.User{
			ID:           uuid.NewString(),
			Name:         seed.Name,
			PasswordHash: hash,
			Role:         models.Role(seed.Role),
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("seeded user %s (%s)", user.Name, user.Role)
	}

	return nil
}
