package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
)

// DBClient is the storage the server needs. *db.DB implements it.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, phone string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, u *db.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateResume(ctx context.Context, userID uuid.UUID, title string, doc *types.Document) (*db.Resume, error)
	GetResume(ctx context.Context, userID, id uuid.UUID) (*db.Resume, error)
	ListResumes(ctx context.Context, userID uuid.UUID) ([]types.ResumeSummary, error)
	UpdateResume(ctx context.Context, userID, id uuid.UUID, title *string, doc *types.Document) (*db.Resume, error)
	DeleteResume(ctx context.Context, userID, id uuid.UUID) (bool, error)

	Close()
}

var _ DBClient = (*db.DB)(nil)
