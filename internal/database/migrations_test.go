package database

import (
	"path/filepath"
	"testing"

	"github.com/azoai/botadmin/internal/store"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newMigrationDatabase(testContext *testing.T) *gorm.DB {
	testContext.Helper()
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&store.Product{}, &store.Order{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}
	return database
}

func TestApplyMigrationsLowercasesKeywords(testContext *testing.T) {
	database := newMigrationDatabase(testContext)

	product := store.Product{ID: "p1", Name: "Kopi Susu", Keyword: "KOPI", Price: 15000}
	if err := database.Create(&product).Error; err != nil {
		testContext.Fatalf("failed to insert product: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var stored store.Product
	if err := database.Where("id = ?", "p1").Take(&stored).Error; err != nil {
		testContext.Fatalf("failed to reload product: %v", err)
	}
	if stored.Keyword != "kopi" {
		testContext.Fatalf("expected lowercased keyword, got %q", stored.Keyword)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationLowercaseProductKeywords).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsNormalizesLegacyOrderStatus(testContext *testing.T) {
	database := newMigrationDatabase(testContext)

	order := store.Order{ID: "o1", CustomerPhone: "628111", TotalAmount: 50, Status: "done"}
	if err := database.Create(&order).Error; err != nil {
		testContext.Fatalf("failed to insert order: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var stored store.Order
	if err := database.Where("id = ?", "o1").Take(&stored).Error; err != nil {
		testContext.Fatalf("failed to reload order: %v", err)
	}
	if stored.Status != store.OrderStatusCompleted {
		testContext.Fatalf("expected completed status, got %q", stored.Status)
	}
}

func TestApplyMigrationsIsIdempotent(testContext *testing.T) {
	database := newMigrationDatabase(testContext)

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("first run failed: %v", err)
	}
	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("second run failed: %v", err)
	}

	var count int64
	if err := database.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count migration records: %v", err)
	}
	if count != 2 {
		testContext.Fatalf("expected one record per migration, got %d", count)
	}
}
