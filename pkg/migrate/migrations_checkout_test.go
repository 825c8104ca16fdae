package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boxport/boxport-backend/pkg/migrate"
)

func TestCheckoutMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_checkouts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no checkout migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS checkouts",
		"is_finalized BOOLEAN NOT NULL DEFAULT FALSE",
		"CHECK (payment_status IN ('unpaid', 'paid'))",
		"CHECK (shipping_method IN ('standard', 'express'))",
		"DROP TABLE IF EXISTS checkouts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPriceMigrationEnforcesCountryUniqueness(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_product_prices.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no product price migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"UNIQUE (product_id, country)",
		"CHECK (amount >= 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirectoryValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
