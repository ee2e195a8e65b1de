package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - append-only journal of triggered device actions
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			gesture TEXT NOT NULL,
			action TEXT NOT NULL CHECK(action IN ('turned_on', 'turned_off')),
			created_at DATETIME NOT NULL
		)`,

		// Indexes for recency listing and retention sweeps
		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_device_id ON events(device_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
