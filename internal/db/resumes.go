package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/types"
)

const resumeColumns = `id, user_id, title, content, created_at, updated_at`

func scanResume(row pgx.Row) (*Resume, error) {
	var r Resume
	var content []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &content, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	doc, err := decodeContent(content)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", r.ID, err)
	}
	r.Content = doc
	return &r, nil
}

func decodeContent(content []byte) (*types.Document, error) {
	doc := &types.Document{}
	if len(content) > 0 {
		if err := json.Unmarshal(content, doc); err != nil {
			return nil, fmt.Errorf("failed to decode content: %w", err)
		}
	}
	doc.ApplyDefaults()
	return doc, nil
}

func encodeContent(doc *types.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("resume content is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content: %w", err)
	}
	return data, nil
}

// CreateResume stores a new resume for userID
func (db *DB) CreateResume(ctx context.Context, userID uuid.UUID, title string, doc *types.Document) (*Resume, error) {
	content, err := encodeContent(doc)
	if err != nil {
		return nil, err
	}
	r, err := scanResume(db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, title, content)
		 VALUES ($1, $2, $3)
		 RETURNING `+resumeColumns,
		userID, title, content,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return r, nil
}

// GetResume retrieves a resume owned by userID. Returns nil, nil when it does
// not exist or belongs to someone else.
func (db *DB) GetResume(ctx context.Context, userID, id uuid.UUID) (*Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumes returns the user's resumes, most recently updated first
func (db *DB) ListResumes(ctx context.Context, userID uuid.UUID) ([]types.ResumeSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, COALESCE(content->'personalInfo'->>'fullName', ''), updated_at
		 FROM resumes WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	summaries := []types.ResumeSummary{}
	for rows.Next() {
		var s types.ResumeSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.FullName, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return summaries, nil
}

// UpdateResume applies a partial update; nil title or doc leaves that column
// unchanged. Returns nil, nil when the resume is not found for userID.
func (db *DB) UpdateResume(ctx context.Context, userID, id uuid.UUID, title *string, doc *types.Document) (*Resume, error) {
	var content []byte
	if doc != nil {
		var err error
		if content, err = encodeContent(doc); err != nil {
			return nil, err
		}
	}
	r, err := scanResume(db.pool.QueryRow(ctx,
		`UPDATE resumes
		 SET title = COALESCE($3, title),
		     content = COALESCE($4::jsonb, content),
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+resumeColumns,
		id, userID, title, content,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update resume: %w", err)
	}
	return r, nil
}

// DeleteResume deletes a resume owned by userID and reports whether it existed
func (db *DB) DeleteResume(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
