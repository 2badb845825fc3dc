package store

import (
	"database/sql"
	"time"
)

// Commit is one symbol appended to the text.
type Commit struct {
	ID           int64     `json:"id"`
	TranscriptID string    `json:"transcriptId,omitempty"`
	Symbol       string    `json:"symbol"`
	Language     string    `json:"language"`
	Mode         string    `json:"mode"`
	Manual       bool      `json:"manual"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SymbolCount is the number of commits for one symbol.
type SymbolCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// CommitRepository records and queries the commit log.
type CommitRepository struct {
	db *sql.DB
}

// Commits returns the commit repository for this store.
func (s *Store) Commits() *CommitRepository {
	return &CommitRepository{db: s.db}
}

// Record inserts a commit and sets its ID.
func (r *CommitRepository) Record(c *Commit) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	var transcriptID any
	if c.TranscriptID != "" {
		transcriptID = c.TranscriptID
	}

	result, err := r.db.Exec(
		`INSERT INTO commits (transcript_id, symbol, language, mode, manual, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		transcriptID, c.Symbol, c.Language, c.Mode, c.Manual, c.CreatedAt,
	)
	if err != nil {
		return err
	}

	c.ID, err = result.LastInsertId()
	return err
}

// Recent returns the latest commits, newest first.
func (r *CommitRepository) Recent(limit int) ([]*Commit, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, transcript_id, symbol, language, mode, manual, created_at
		 FROM commits ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []*Commit
	for rows.Next() {
		c := &Commit{}
		var transcriptID sql.NullString
		var manual int
		if err := rows.Scan(&c.ID, &transcriptID, &c.Symbol, &c.Language, &c.Mode, &manual, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.TranscriptID = transcriptID.String
		c.Manual = manual != 0
		commits = append(commits, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return commits, nil
}

// AttachUnassigned links every commit without a transcript to transcriptID
// and returns how many were linked.
func (r *CommitRepository) AttachUnassigned(transcriptID string) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE commits SET transcript_id = ? WHERE transcript_id IS NULL`,
		transcriptID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Counts returns commit counts per symbol for language, most frequent first.
func (r *CommitRepository) Counts(language string) ([]SymbolCount, error) {
	rows, err := r.db.Query(
		`SELECT symbol, COUNT(*) FROM commits WHERE language = ?
		 GROUP BY symbol ORDER BY COUNT(*) DESC, symbol ASC`,
		language,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []SymbolCount
	for rows.Next() {
		var sc SymbolCount
		if err := rows.Scan(&sc.Symbol, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
