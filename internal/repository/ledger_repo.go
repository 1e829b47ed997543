package repository

import (
	"context"
	"fmt"

	"lyricclash/internal/database"
)

// LedgerRepository tracks granted bonus switches per assignment. One row per
// assignment carries the running granted and spent totals; spends succeed
// only while unspent capacity remains, so concurrent spends cannot overdraw.
type LedgerRepository struct {
	db database.DBTX
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db database.DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Grant adds bonus switches to an assignment's ledger
func (r *LedgerRepository) Grant(ctx context.Context, assignmentID int64, count int) error {
	if count <= 0 {
		return fmt.Errorf("grant count must be positive, got %d", count)
	}

	query := "UPDATE bonus_grants SET granted = granted + ? WHERE assignment_id = ?"
	result, err := r.db.ExecContext(ctx, query, count, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to grant bonus switches: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check grant update: %w", err)
	}
	if affected > 0 {
		return nil
	}

	query = "INSERT INTO bonus_grants (assignment_id, granted, spent) VALUES (?, ?, 0)"
	if _, err := r.db.ExecContext(ctx, query, assignmentID, count); err != nil {
		return fmt.Errorf("failed to create bonus grant: %w", err)
	}
	return nil
}

// Spend records bonus switch spends against an assignment. Returns false
// without error when the ledger has insufficient unspent capacity.
func (r *LedgerRepository) Spend(ctx context.Context, assignmentID int64, count int) (bool, error) {
	if count <= 0 {
		return false, fmt.Errorf("spend count must be positive, got %d", count)
	}

	query := "UPDATE bonus_grants SET spent = spent + ? WHERE assignment_id = ? AND granted - spent >= ?"
	result, err := r.db.ExecContext(ctx, query, count, assignmentID, count)
	if err != nil {
		return false, fmt.Errorf("failed to spend bonus switches: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check spend update: %w", err)
	}
	return affected == 1, nil
}

// Remaining returns the unspent bonus switches for an assignment
func (r *LedgerRepository) Remaining(ctx context.Context, assignmentID int64) (int, error) {
	query := "SELECT COALESCE(SUM(granted - spent), 0) FROM bonus_grants WHERE assignment_id = ?"
	var remaining int
	if err := r.db.QueryRowContext(ctx, query, assignmentID).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("failed to read bonus balance: %w", err)
	}
	return remaining, nil
}

// ForAssignment binds the repository to one assignment so it can serve as
// the budget accountant's ledger
func (r *LedgerRepository) ForAssignment(assignmentID int64) *AssignmentLedger {
	return &AssignmentLedger{repo: r, assignmentID: assignmentID}
}

// AssignmentLedger adapts LedgerRepository to a single assignment
type AssignmentLedger struct {
	repo         *LedgerRepository
	assignmentID int64
}

// SpendBonusSwitches confirms a bonus spend with the ledger
func (l *AssignmentLedger) SpendBonusSwitches(ctx context.Context, count int) (bool, error) {
	return l.repo.Spend(ctx, l.assignmentID, count)
}
