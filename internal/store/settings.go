package store

import "context"

// Well-known setting keys.
const (
	SettingFreeShippingThreshold = "free_shipping_threshold"
	SettingStoreWhatsApp         = "store_whatsapp"
	SettingStoreEmail            = "store_email"
)

// GetSetting returns the raw value of one setting key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.Pool.QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		return "", notFound(err)
	}
	return value, nil
}

// ListSettings returns all settings as a map.
func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.Pool.Query(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// UpsertSetting writes a setting, replacing any existing value.
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}
