package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Transcript is a saved copy of the accumulated text.
type Transcript struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Mode      string    `json:"mode"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TranscriptRepository provides CRUD operations for transcripts.
type TranscriptRepository struct {
	db *sql.DB
}

// Transcripts returns the transcript repository for this store.
func (s *Store) Transcripts() *TranscriptRepository {
	return &TranscriptRepository{db: s.db}
}

// Create inserts a new transcript, assigning an ID when t.ID is empty.
func (r *TranscriptRepository) Create(t *Transcript) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO transcripts (id, language, mode, text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Language, t.Mode, t.Text, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a transcript by its ID.
func (r *TranscriptRepository) GetByID(id string) (*Transcript, error) {
	t := &Transcript{}
	err := r.db.QueryRow(
		`SELECT id, language, mode, text, created_at, updated_at
		 FROM transcripts WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Language, &t.Mode, &t.Text, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List retrieves transcripts newest first. A non-positive limit returns all.
func (r *TranscriptRepository) List(limit int) ([]*Transcript, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, language, mode, text, created_at, updated_at
		 FROM transcripts ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		t := &Transcript{}
		if err := rows.Scan(&t.ID, &t.Language, &t.Mode, &t.Text, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transcripts, nil
}

// Update replaces the text of an existing transcript.
func (r *TranscriptRepository) Update(t *Transcript) error {
	t.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(
		`UPDATE transcripts SET language = ?, mode = ?, text = ?, updated_at = ?
		 WHERE id = ?`,
		t.Language, t.Mode, t.Text, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a transcript by its ID. Commits referencing it are kept
// with their transcript cleared.
func (r *TranscriptRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
