package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PracticeRun is one judged practice attempt.
type PracticeRun struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Target    string    `json:"target"`
	Signed    string    `json:"signed"`
	Result    string    `json:"result"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"createdAt"`
}

// PracticeSummary aggregates practice runs for one language.
type PracticeSummary struct {
	Language string `json:"language"`
	Correct  int    `json:"correct"`
	Attempts int    `json:"attempts"`
}

// PracticeRepository records practice results.
type PracticeRepository struct {
	db *sql.DB
}

// Practice returns the practice repository for this store.
func (s *Store) Practice() *PracticeRepository {
	return &PracticeRepository{db: s.db}
}

// Record inserts a practice run, assigning an ID when p.ID is empty.
func (r *PracticeRepository) Record(p *PracticeRun) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO practice_runs (id, language, target, signed, result, attempt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Language, p.Target, p.Signed, p.Result, p.Attempt, p.CreatedAt,
	)
	return err
}

// List returns practice runs for language, newest first. An empty language
// lists all.
func (r *PracticeRepository) List(language string, limit int) ([]*PracticeRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, language, target, signed, result, attempt, created_at
		 FROM practice_runs WHERE (? = '' OR language = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		language, language, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*PracticeRun
	for rows.Next() {
		p := &PracticeRun{}
		if err := rows.Scan(&p.ID, &p.Language, &p.Target, &p.Signed, &p.Result, &p.Attempt, &p.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, p)
	}
	return runs, rows.Err()
}

// Summary returns correct and total attempt counts for language.
func (r *PracticeRepository) Summary(language string) (PracticeSummary, error) {
	s := PracticeSummary{Language: language}
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN result = 'correct' THEN 1 ELSE 0 END), 0), COUNT(*)
		 FROM practice_runs WHERE language = ?`,
		language,
	).Scan(&s.Correct, &s.Attempts)
	return s, err
}
