package billing

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JrVava/laxmanBackend/models"
)

// newTestStore opens a throwaway sqlite database with the billing schema.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billing_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Billing{}, &models.BillingDetail{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func validCreate() CreateInvoice {
	return CreateInvoice{
		Title:        "Mr",
		CustomerName: "Laxman",
		Location:     "Pune",
		BillingDate:  "2024-03-15",
		Tax:          10,
		Packing:      5,
		Items: []ItemInput{
			{Description: "Cement", Qty: 10, Rate: 5, Unit: "bag"},
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
