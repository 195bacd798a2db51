package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/minhthang2k5/smart-restaurant-sub000/models"
)

// SetupTestDB opens an in-memory sqlite database with the full schema
// migrated, including the partial unique index guarding one active session
// per table
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.DiningTable{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.Session{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.PaymentTransaction{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// sqlite supports the same partial unique index as postgres
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_table
		ON sessions (table_id)
		WHERE status IN ('active', 'pending_payment') AND deleted_at IS NULL`).Error; err != nil {
		t.Fatalf("Failed to create session index: %v", err)
	}

	return db
}

// SeedTable creates an active dining table
func SeedTable(t *testing.T, db *gorm.DB, number string) *models.DiningTable {
	t.Helper()

	table := &models.DiningTable{Number: number, Location: "main floor", Capacity: 4, Status: "active"}
	if err := db.Create(table).Error; err != nil {
		t.Fatalf("Failed to seed table %s: %v", number, err)
	}
	return table
}

// SeedMenuItem creates an available menu item, optionally with one modifier
// group containing the given option adjustments
func SeedMenuItem(t *testing.T, db *gorm.DB, name string, price float64, adjustments ...float64) *models.MenuItem {
	t.Helper()

	item := &models.MenuItem{Name: name, Description: name + " description", Price: price, IsAvailable: true}
	if len(adjustments) > 0 {
		group := models.ModifierGroup{Name: name + " options"}
		for i, adj := range adjustments {
			group.Options = append(group.Options, models.ModifierOption{
				Name:            name + " option " + string(rune('A'+i)),
				PriceAdjustment: adj,
				IsAvailable:     true,
			})
		}
		item.ModifierGroups = []models.ModifierGroup{group}
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed menu item %s: %v", name, err)
	}
	return item
}

// SeedUser creates a user with the given role
func SeedUser(t *testing.T, db *gorm.DB, auth0ID, role string) *models.User {
	t.Helper()

	user := &models.User{
		Auth0ID: auth0ID,
		Name:    auth0ID,
		Email:   auth0ID + "@example.com",
		Role:    role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", auth0ID, err)
	}
	return user
}
