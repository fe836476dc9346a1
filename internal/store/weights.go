// ABOUTME: Weight entry store methods with owner scoping on every mutation
// ABOUTME: Listing is ordered by measurement time descending with keyset cursor pagination

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpsertWeightEntry creates a new entry when ID is empty, otherwise updates
// the existing entry. Updates are scoped to the owning user; updating an
// entry that does not exist or belongs to another user returns ErrNotFound.
func (s *SQLiteStore) UpsertWeightEntry(ctx context.Context, entry *WeightEntry) error {
	now := time.Now().UTC()
	entry.UpdatedAt = now

	if entry.ID == "" {
		entry.ID = uuid.New().String()
		entry.CreatedAt = now

		query := `
			INSERT INTO weight_entries (entry_id, user_id, measured_at, weight_lbs, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.ExecContext(ctx, query,
			entry.ID,
			entry.UserID,
			entry.MeasuredAt.UTC().Format(time.RFC3339Nano),
			entry.WeightLbs,
			entry.Notes,
			entry.CreatedAt.Format(time.RFC3339Nano),
			entry.UpdatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting weight entry: %w", err)
		}
		return nil
	}

	query := `
		UPDATE weight_entries
		SET measured_at = ?, weight_lbs = ?, notes = ?, updated_at = ?
		WHERE entry_id = ? AND user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		entry.MeasuredAt.UTC().Format(time.RFC3339Nano),
		entry.WeightLbs,
		entry.Notes,
		entry.UpdatedAt.Format(time.RFC3339Nano),
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating weight entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWeightEntries returns up to limit entries for the user ordered by
// measured_at descending (entry id breaks ties). A non-empty cursor names
// the last entry of the previous page; results continue strictly after it.
func (s *SQLiteStore) ListWeightEntries(ctx context.Context, userID string, limit int, cursor string) ([]*WeightEntry, error) {
	args := []any{userID}
	query := `
		SELECT entry_id, user_id, measured_at, weight_lbs, notes, created_at, updated_at
		FROM weight_entries
		WHERE user_id = ?
	`

	if cursor != "" {
		// Resolve the cursor row to continue after its position in the
		// (measured_at DESC, entry_id DESC) ordering.
		var measuredAt string
		err := s.db.QueryRowContext(ctx,
			`SELECT measured_at FROM weight_entries WHERE entry_id = ? AND user_id = ?`,
			cursor, userID,
		).Scan(&measuredAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("resolving cursor: %w", err)
		}

		query += ` AND (measured_at < ? OR (measured_at = ? AND entry_id < ?))`
		args = append(args, measuredAt, measuredAt, cursor)
	}

	query += ` ORDER BY measured_at DESC, entry_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying weight entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*WeightEntry
	for rows.Next() {
		e, err := scanWeightEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weight entries: %w", err)
	}
	return entries, nil
}

// DeleteWeightEntries deletes the entries matching both the id set and the
// owning user, returning the number actually removed. Ids that don't exist
// or belong to another user are silently ignored.
func (s *SQLiteStore) DeleteWeightEntries(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	query := fmt.Sprintf(
		`DELETE FROM weight_entries WHERE entry_id IN (%s) AND user_id = ?`,
		placeholders,
	)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting weight entries: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}

	s.logger.Debug("deleted weight entries",
		"user_id", userID,
		"requested", len(ids),
		"deleted", affected,
	)
	return int(affected), nil
}

// scanWeightEntry scans one weight entry row from a row or rows scanner.
func scanWeightEntry(scanner interface{ Scan(dest ...any) error }) (*WeightEntry, error) {
	var e WeightEntry
	var measuredAt, createdAt, updatedAt string
	var notes sql.NullString

	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&measuredAt,
		&e.WeightLbs,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning weight entry: %w", err)
	}

	e.Notes = notes.String
	if e.MeasuredAt, err = time.Parse(time.RFC3339Nano, measuredAt); err != nil {
		return nil, fmt.Errorf("parsing measured_at: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &e, nil
}
