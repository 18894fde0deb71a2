// Package storetest provides an in-memory SQLite database seeded with reference countries for tests.
package storetest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// Reference countries used across tests.
var (
	World      = model.Country{CountryNumber: 900, CountryCode: "WLD", CountryName: "world"}
	Developing = model.Country{CountryNumber: 901, CountryCode: "DEV", CountryName: "developing", IsDeveloping: true}
	China      = model.Country{CountryNumber: 156, CountryCode: "CN", CountryName: "china", IsDeveloping: true}
	India      = model.Country{CountryNumber: 356, CountryCode: "IN", CountryName: "india", IsDeveloping: true}
	VietNam    = model.Country{CountryNumber: 704, CountryCode: "VN", CountryName: "viet nam", IsDeveloping: true}
	Singapore  = model.Country{CountryNumber: 702, CountryCode: "SG", CountryName: "singapore"}
	Malaysia   = model.Country{CountryNumber: 458, CountryCode: "MY", CountryName: "malaysia", IsDeveloping: true}
	Korea      = model.Country{CountryNumber: 410, CountryCode: "KR", CountryName: "korea, republic of"}
	Japan      = model.Country{CountryNumber: 392, CountryCode: "JP", CountryName: "japan"}
	Australia  = model.Country{CountryNumber: 36, CountryCode: "AU", CountryName: "australia"}
	Germany    = model.Country{CountryNumber: 276, CountryCode: "DE", CountryName: "germany"}
)

// Countries lists every reference country.
func Countries() []model.Country {
	return []model.Country{World, Developing, China, India, VietNam, Singapore, Malaysia, Korea, Japan, Australia, Germany}
}

// Open returns a migrated in-memory database. Seed countries with Seed.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying database: %v", err)
	}
	// Every connection to ":memory:" is a new database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&model.Country{}, &model.Item{}, &model.ItemAlias{}, &model.Tariff{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// Seed inserts the given countries, or every reference country when none are given.
func Seed(t testing.TB, db *gorm.DB, countries ...model.Country) {
	t.Helper()
	if len(countries) == 0 {
		countries = Countries()
	}
	if err := db.Create(&countries).Error; err != nil {
		t.Fatalf("failed to seed countries: %v", err)
	}
}

// OpenSeeded is Open followed by Seed with every reference country.
func OpenSeeded(t testing.TB) *gorm.DB {
	t.Helper()
	db := Open(t)
	Seed(t, db)
	return db
}
