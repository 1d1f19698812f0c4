package postgres

import (
	"context"
	"database/sql"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
)

var _ output.SettingsStore = (*DB)(nil)

func (d *DB) GetSetting(ctx context.Context, key string) (*entity.SystemSetting, error) {
	s := &entity.SystemSetting{}
	err := d.db.QueryRowContext(ctx,
		`SELECT key, value, updated_by, updated_at FROM system_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpsertSetting updates the row if it exists, inserts it otherwise.
func (d *DB) UpsertSetting(ctx context.Context, key, value, updatedBy string) (*entity.SystemSetting, error) {
	s := &entity.SystemSetting{}
	err := d.db.QueryRowContext(ctx,
		`INSERT INTO system_settings (key, value, updated_by, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = now()
		 RETURNING key, value, updated_by, updated_at`,
		key, value, updatedBy).
		Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
