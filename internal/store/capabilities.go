// ABOUTME: Capability record store methods keyed by (capability_id, version)
// ABOUTME: Upsert replaces the definition and bumps updated_at; lookups favor latest published

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertCapability inserts or replaces a capability record keyed by
// (capability_id, version). On conflict the definition and status are
// replaced and updated_at is bumped; created_at is preserved.
func (s *SQLiteStore) UpsertCapability(ctx context.Context, rec *CapabilityRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `
		INSERT INTO capabilities (capability_id, version, status, definition_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (capability_id, version) DO UPDATE SET
			status = excluded.status,
			definition_json = excluded.definition_json,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.CapabilityID,
		rec.Version,
		rec.Status,
		string(rec.Definition),
		rec.CreatedAt.Format(time.RFC3339),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting capability: %w", err)
	}

	s.logger.Debug("upserted capability",
		"capability_id", rec.CapabilityID,
		"version", rec.Version,
		"status", rec.Status,
	)
	return nil
}

// FindLatestPublished returns the most recently created published record for
// the given capability id. Returns ErrNotFound when no published record exists.
func (s *SQLiteStore) FindLatestPublished(ctx context.Context, capabilityID string) (*CapabilityRecord, error) {
	query := `
		SELECT capability_id, version, status, definition_json, created_at, updated_at
		FROM capabilities
		WHERE capability_id = ? AND status = 'published'
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanCapabilityRecord(s.db.QueryRowContext(ctx, query, capabilityID))
}

// ListCapabilityRecords returns all capability records ordered by creation time.
func (s *SQLiteStore) ListCapabilityRecords(ctx context.Context) ([]*CapabilityRecord, error) {
	query := `
		SELECT capability_id, version, status, definition_json, created_at, updated_at
		FROM capabilities
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying capabilities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*CapabilityRecord
	for rows.Next() {
		rec, err := scanCapabilityRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capabilities: %w", err)
	}
	return records, nil
}

// scanCapabilityRecord scans one capability row from a row or rows scanner.
func scanCapabilityRecord(scanner interface{ Scan(dest ...any) error }) (*CapabilityRecord, error) {
	var rec CapabilityRecord
	var definition, createdAt, updatedAt string

	err := scanner.Scan(
		&rec.CapabilityID,
		&rec.Version,
		&rec.Status,
		&definition,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning capability: %w", err)
	}

	rec.Definition = []byte(definition)
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rec, nil
}
