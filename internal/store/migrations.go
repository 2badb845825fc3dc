package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Transcripts table - saved snapshots of the accumulated text
		`CREATE TABLE IF NOT EXISTS transcripts (
			id TEXT PRIMARY KEY,
			language TEXT NOT NULL CHECK(language IN ('EN', 'AR')),
			mode TEXT NOT NULL CHECK(mode IN ('LETTERS', 'WORDS')),
			text TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Commits table - every symbol appended to the text
		`CREATE TABLE IF NOT EXISTS commits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transcript_id TEXT REFERENCES transcripts(id) ON DELETE SET NULL,
			symbol TEXT NOT NULL,
			language TEXT NOT NULL,
			mode TEXT NOT NULL,
			manual INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Practice runs table - one row per judged drill attempt
		`CREATE TABLE IF NOT EXISTS practice_runs (
			id TEXT PRIMARY KEY,
			language TEXT NOT NULL,
			target TEXT NOT NULL,
			signed TEXT NOT NULL,
			result TEXT NOT NULL CHECK(result IN ('correct', 'tryagain')),
			attempt INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_commits_created_at ON commits(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_commits_transcript_id ON commits(transcript_id)`,
		`CREATE INDEX IF NOT EXISTS idx_practice_runs_language ON practice_runs(language)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
