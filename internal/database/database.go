package database

import (
	"log"
	"os"

	"terravest/config"
	"terravest/internal/domain"
	"terravest/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Deposit{},
		&models.Withdrawal{},
		&models.Transaction{},
		&models.Notification{},
		&models.News{},
		&models.Event{},
		&models.GalleryItem{},
		&models.Project{},
		&models.ResourceFile{},
		&models.Partner{},
		&models.ContactMessage{},
	)
}

// SeedAdmin creates the initial admin account when ADMIN_EMAIL/ADMIN_PASSWORD
// are set and no user with that email exists yet.
func SeedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] bcrypt: %v", err)
		return
	}
	now := db.NowFunc()
	admin := &models.User{
		Name:            "Administrator",
		Email:           email,
		PasswordHash:    string(hash),
		Role:            domain.RoleAdmin,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[Seed] admin create: %v", err)
		return
	}
	log.Printf("[Seed] admin account created for %s", email)
}
