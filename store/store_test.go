package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shopfloor/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, err := db.AdminUserExists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("fresh db should have no admin")
	}

	if err := db.CreateAdminUser("admin", "hash-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.CreateAdminUser("admin", "hash-2"); err == nil {
		t.Error("duplicate username should fail")
	}
	if err := db.UpdateAdminPassword("admin", "hash-3"); err != nil {
		t.Fatalf("update: %v", err)
	}
	u, err := db.GetAdminUser("admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.PasswordHash != "hash-3" {
		t.Errorf("PasswordHash = %q, want hash-3", u.PasswordHash)
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if u.LastLoginAt != nil {
		t.Errorf("LastLoginAt = %v before any login", u.LastLoginAt)
	}
	if _, err := db.GetAdminUser("nobody"); !errors.Is(err, ErrNoAdminUser) {
		t.Errorf("missing user err = %v, want ErrNoAdminUser", err)
	}
	if err := db.UpdateAdminPassword("nobody", "x"); !errors.Is(err, ErrNoAdminUser) {
		t.Errorf("update missing user err = %v, want ErrNoAdminUser", err)
	}

	if err := db.RecordAdminLogin("admin"); err != nil {
		t.Fatalf("record login: %v", err)
	}
	users, err := db.ListAdminUsers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].LastLoginAt == nil {
		t.Errorf("users = %+v, want one with LastLoginAt", users)
	}
}

func TestFetchLog(t *testing.T) {
	db := testDB(t)

	latest, err := db.LatestFetchLog("0001", "production-orders")
	if err != nil {
		t.Fatalf("latest on empty: %v", err)
	}
	if latest != nil {
		t.Fatalf("latest = %+v, want nil", latest)
	}

	entries := []*FetchLog{
		{Plant: "0001", Screen: "production-orders", OK: true, RecordCount: 12, DurationMS: 40},
		{Plant: "0001", Screen: "production-orders", OK: false, Error: "odata HTTP 500", DurationMS: 15},
		{Plant: "0002", Screen: "production-orders", OK: true, RecordCount: 3},
	}
	for _, e := range entries {
		if err := db.InsertFetchLog(e); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if e.ID == 0 {
			t.Fatal("ID should be assigned")
		}
	}

	latest, err = db.LatestFetchLog("0001", "production-orders")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.OK || latest.Error != "odata HTTP 500" {
		t.Errorf("latest = %+v, want the failed entry", latest)
	}

	all, err := db.ListFetchLog(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Plant != "0002" {
		t.Errorf("list = %d entries, first plant %q", len(all), all[0].Plant)
	}

	failed, err := db.ListFailedFetchLog(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != entries[1].ID {
		t.Errorf("failed = %+v", failed)
	}
}

func TestAuditLog(t *testing.T) {
	db := testDB(t)
	if err := db.AppendAudit("plant.login", "0001", "", "0001"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.AppendAudit("config.odata", "base_url", "http://sap", "admin"); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := db.ListAuditLog(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Action != "config.odata" || entries[0].Actor != "admin" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
}

func TestOutbox(t *testing.T) {
	db := testDB(t)
	if err := db.EnqueueOutbox("shopfloor/activity", []byte(`{"a":1}`), "screen.loaded"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := db.EnqueueOutbox("shopfloor/activity", []byte(`{"a":2}`), "plant.login"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	msgs, err := db.ListPendingOutbox(5, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("pending = %d, want 2", len(msgs))
	}
	if string(msgs[0].Payload) != `{"a":1}` {
		t.Errorf("payload = %s", msgs[0].Payload)
	}

	if err := db.IncrementOutboxRetries(msgs[1].ID); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if err := db.AckOutbox(msgs[0].ID); err != nil {
		t.Fatalf("ack: %v", err)
	}
	msgs, _ = db.ListPendingOutbox(5, 10)
	if len(msgs) != 1 {
		t.Fatalf("pending after ack = %d, want 1", len(msgs))
	}
	if msgs[0].Retries != 1 {
		t.Errorf("Retries = %d, want 1", msgs[0].Retries)
	}
	if msgs, _ = db.ListPendingOutbox(1, 10); len(msgs) != 0 {
		t.Errorf("pending under retry cap 1 = %d, want 0", len(msgs))
	}
}

func TestRebind(t *testing.T) {
	got := Rebind(`SELECT * FROM t WHERE a = ? AND b = ?`)
	if got != `SELECT * FROM t WHERE a = $1 AND b = $2` {
		t.Errorf("Rebind = %q", got)
	}
}
