package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// Resume is a stored resume document owned by a user. Content is kept as JSONB.
type Resume struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Content   *types.Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record converts the row to its API representation.
func (r *Resume) Record() *types.ResumeRecord {
	if r == nil {
		return nil
	}
	return &types.ResumeRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
