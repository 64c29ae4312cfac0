package main

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/JrVava/laxmanBackend/models"
)

func openDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// autoMigrate migrates models individually so a failure on one doesn't block
// others. The roles master table goes first so the users FK can be applied.
func autoMigrate(db *gorm.DB, log *zap.SugaredLogger) {
	if err := db.AutoMigrate(&models.Role{}); err != nil {
		log.Warnw("migration warning (roles)", "error", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Warnw("migration warning (users)", "error", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		log.Warnw("migration warning (refresh_tokens)", "error", err)
	}
	if err := db.AutoMigrate(&models.Customer{}); err != nil {
		log.Warnw("migration warning (customers)", "error", err)
	}
	if err := db.AutoMigrate(&models.Billing{}); err != nil {
		log.Warnw("migration warning (billings)", "error", err)
	}
	if err := db.AutoMigrate(&models.BillingDetail{}); err != nil {
		log.Warnw("migration warning (billing_details)", "error", err)
	}
}

// seedDB ensures the role master records and a default admin account exist.
func seedDB(db *gorm.DB, log *zap.SugaredLogger) {
	roles := []models.Role{
		{Name: "administrator", Description: "full access"},
		{Name: "user", Description: "regular user"},
	}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Warnw("failed to find administrator role", "error", err)
		}
		rid := role.ID
		admin := models.User{Username: "admin", RoleID: &rid}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Infow("seeded admin user", "username", "admin")
	}
}
