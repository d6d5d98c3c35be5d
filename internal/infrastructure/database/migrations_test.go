package database

import (
	"strings"
	"testing"
)

func TestEmbeddedMigrationsParse(t *testing.T) {
	migrations, err := Migrations().FindMigrations()
	if err != nil {
		t.Fatalf("find migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Id != "0001_users.sql" {
		t.Fatalf("migrations out of order: %s first", migrations[0].Id)
	}

	for _, m := range migrations {
		if len(m.Up) == 0 || len(m.Down) == 0 {
			t.Errorf("%s: missing up or down statements", m.Id)
		}
	}

	up := strings.Join(migrations[1].Up, "\n")
	for _, col := range []string{"messages", "notifications", "deadline_at", "guest_key"} {
		if !strings.Contains(up, col) {
			t.Errorf("contact_requests migration lacks %s", col)
		}
	}
}
