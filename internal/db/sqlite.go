package db

import (
	"crypto/rand"
	"encoding/hex"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/postforge/postforge/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the SQLite database and runs schema migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.CompanyProfile{},
		&models.BrandVoice{},
		&models.SocialAccount{},
		&models.Post{},
		&models.PostPlatform{},
		&models.AIGeneratedContent{},
		&models.ContentTemplate{},
		&models.PostPerformance{},
		&models.Config{},
		&models.RequestLog{},
	); err != nil {
		return nil, err
	}

	// Generate persistent secrets on first run
	ensureSecret(database, "jwt_secret")
	ensureSecret(database, "token_encryption_key")

	return database, nil
}

// ensureSecret generates a random 32-byte hex secret under key if missing.
func ensureSecret(database *gorm.DB, key string) {
	var config models.Config
	result := database.Where("key = ?", key).First(&config)

	if result.Error != nil {
		secretBytes := make([]byte, 32)
		rand.Read(secretBytes)

		database.Create(&models.Config{
			Key:   key,
			Value: hex.EncodeToString(secretBytes),
		})
		log.Printf("🔑 Generated new %s", key)
	}
}

// GetSecret retrieves a stored secret from the config table.
func GetSecret(database *gorm.DB, key string) string {
	var config models.Config
	database.Where("key = ?", key).First(&config)
	return config.Value
}
