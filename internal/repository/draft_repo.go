package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lyricclash/internal/database"
	"lyricclash/internal/draft"
	"lyricclash/internal/models"
)

// DraftRepository is the remote draft tier, persisting attempt drafts as JSON
// payloads keyed by practice kind and assignment. It satisfies draft.Store.
type DraftRepository struct {
	db database.DBTX
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db database.DBTX) *DraftRepository {
	return &DraftRepository{db: db}
}

// Load retrieves a persisted draft, nil when none exists
func (r *DraftRepository) Load(ctx context.Context, key draft.Key) (*models.AttemptDraft, error) {
	query := "SELECT payload FROM attempt_drafts WHERE practice_kind = ? AND assignment_id = ?"
	var payload string
	err := r.db.QueryRowContext(ctx, query, key.PracticeKind, key.AssignmentID).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var d models.AttemptDraft
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft payload: %w", err)
	}
	return &d, nil
}

// Save inserts or replaces the persisted draft for this key
func (r *DraftRepository) Save(ctx context.Context, key draft.Key, d *models.AttemptDraft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft payload: %w", err)
	}

	query := r.db.GetDialect().UpsertDraftQuery()
	if _, err := r.db.ExecContext(ctx, query, key.PracticeKind, key.AssignmentID, string(payload), d.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Delete removes the persisted draft for this key
func (r *DraftRepository) Delete(ctx context.Context, key draft.Key) error {
	query := "DELETE FROM attempt_drafts WHERE practice_kind = ? AND assignment_id = ?"
	if _, err := r.db.ExecContext(ctx, query, key.PracticeKind, key.AssignmentID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
