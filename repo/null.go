package repo

import "database/sql"

// scanner is satisfied by both *db.Row and *db.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Null helpers
// ─────────────────────────────────────────────────────────────────────────────

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
