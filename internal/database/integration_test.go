package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	// Skip if not in integration test mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Test with SQLite for integration testing
	dbPath := "test_integration.db"
	defer os.Remove(dbPath)

	// Test initialization
	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Test connection
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"users", "lessons", "lyric_lines", "assignments", "attempt_drafts", "bonus_grants", "submissions"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_transactions.db"
	defer os.Remove(dbPath)

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	// Test successful transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	// Insert test data
	_, err = tx.ExecContext(ctx, "INSERT INTO users (name, email, role, access_code_hash) VALUES (?, ?, ?, ?)",
		"Test Author", "author@example.com", "author", "hashedcode")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	// Commit
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	// Verify data was inserted
	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", "author@example.com").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	// Test rollback
	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}

	_, err = tx2.ExecContext(ctx, "INSERT INTO users (name, email, role, access_code_hash) VALUES (?, ?, ?, ?)",
		"Test Learner", "learner@example.com", "learner", "hashedcode")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}

	// Rollback
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	// Verify data was not inserted
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", "learner@example.com").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}

// TestDraftUpsert exercises the dialect upsert used by the remote draft tier
func TestDraftUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_upsert.db"
	defer os.Remove(dbPath)

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	userID, err := db.ExecReturningID("INSERT INTO users (name, email, role, access_code_hash) VALUES (?, ?, ?, ?)",
		"Learner", "upsert@example.com", "learner", "hashedcode")
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	lessonID, err := db.ExecReturningID("INSERT INTO lessons (title, transcript, created_by) VALUES (?, ?, ?)",
		"Test Lesson", "Hello darkness", userID)
	if err != nil {
		t.Fatalf("Failed to insert lesson: %v", err)
	}
	assignmentID, err := db.ExecReturningID("INSERT INTO assignments (lesson_id, learner_id, status) VALUES (?, ?, ?)",
		lessonID, userID, "pending")
	if err != nil {
		t.Fatalf("Failed to insert assignment: %v", err)
	}

	upsert := db.Dialect.UpsertDraftQuery()
	now := time.Now().UTC()

	// Insert, then update the same key
	if _, err := db.ExecContext(ctx, upsert, "lyric", assignmentID, `{"mode":"fill"}`, now); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, upsert, "lyric", assignmentID, `{"mode":"read"}`, now.Add(time.Second)); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	var count int
	var payload string
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attempt_drafts WHERE practice_kind = ? AND assignment_id = ?",
		"lyric", assignmentID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count drafts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 draft row after upsert, got %d", count)
	}
	err = db.QueryRowContext(ctx, "SELECT payload FROM attempt_drafts WHERE practice_kind = ? AND assignment_id = ?",
		"lyric", assignmentID).Scan(&payload)
	if err != nil {
		t.Fatalf("Failed to read draft payload: %v", err)
	}
	if payload != `{"mode":"read"}` {
		t.Errorf("Expected the second payload to win, got %s", payload)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_concurrent.db"
	defer os.Remove(dbPath)

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	// Create test data
	_, err = db.ExecContext(ctx, "INSERT INTO users (name, email, role, access_code_hash) VALUES (?, ?, ?, ?)",
		"Concurrent User", "concurrent@example.com", "learner", "hashedcode")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	// Run concurrent reads
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var name string
			err := db.QueryRowContext(ctx, "SELECT name FROM users WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if name != "Concurrent User" {
				t.Errorf("Expected name 'Concurrent User', got '%s'", name)
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}
}
