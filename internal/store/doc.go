// ABOUTME: Package documentation for the store package
// ABOUTME: Explains the persistence layer structure and conventions

// Package store provides persistence for trainer-gateway.
//
// The Store interface covers users, capability records, approvals, weight
// entries, and the tool audit log. SQLiteStore is the production
// implementation, backed by modernc.org/sqlite with WAL mode and
// schema-on-open.
//
// Conventions:
//   - Lookups that miss return ErrNotFound, never a nil result.
//   - All timestamps are stored as RFC 3339 UTC strings.
//   - Mutations on user-owned rows always carry the owning user id in the
//     WHERE clause so cross-user writes are impossible at this layer.
//   - Approval status transitions are conditional updates ("only if still
//     pending"), which is what makes concurrent approve/deny safe.
package store
