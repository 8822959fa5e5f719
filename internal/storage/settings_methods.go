package storage

import (
	"context"
	"database/sql"
)

// ========== Hub Settings Methods ==========

const hubModeKey = "hub_mode"

// GetHubMode returns the current hub mode. A hub that never had a mode
// set reports the empty mode, which no group allowlist excludes.
func (s *PostgresStore) GetHubMode(ctx context.Context) (string, error) {
	var mode string
	err := s.getDB().QueryRowContext(ctx,
		`SELECT value FROM hub_settings WHERE key = $1`, hubModeKey).Scan(&mode)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return mode, nil
}

// SetHubMode stores the current hub mode
func (s *PostgresStore) SetHubMode(ctx context.Context, mode string) error {
	_, err := s.getDB().ExecContext(ctx, `
        INSERT INTO hub_settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		hubModeKey, mode,
	)
	return err
}
