package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"votapp-backend/config"
	"votapp-backend/models"
)

// DB is the process-wide database handle. It is initialized once at startup
// and closed on shutdown; collaborators receive it explicitly through the
// repository constructors.
var DB *gorm.DB

// InitDB opens the MySQL connection, runs migrations and stores the handle
// in DB. TranslateError is required: the vote-casting path relies on
// gorm.ErrDuplicatedKey to turn a unique-index violation into a conflict.
func InitDB(cfg *config.Config) error {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("database connection and migrations ready")
	return nil
}

// Migrate creates or updates the schema for all persisted record types.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserVoted{},
		&models.Voting{},
		&models.Option{},
		&models.Vote{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CloseDB releases the underlying connection pool.
func CloseDB() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("failed to access underlying connection: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
		return
	}
	log.Println("database connection closed")
}
