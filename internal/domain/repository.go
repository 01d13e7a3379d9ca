package domain

import (
	"context"
	"time"
)

// ExposeRepository is the persisted state store for generation jobs.
type ExposeRepository interface {
	Create(ctx context.Context, expose *Expose) error
	Update(ctx context.Context, id string, update ExposeUpdate) error
	GetByID(ctx context.Context, id string) (*Expose, error)
	MarkStaleProcessing(ctx context.Context, olderThan time.Duration, message string) (int, error)
}

// ShootRepository persists photo-shoot sessions and their generated photos.
type ShootRepository interface {
	CreateSession(ctx context.Context, session *ShootSession) error
	UpdateSession(ctx context.Context, id string, status GenerationStatus, errMsg *string) error
	GetSession(ctx context.Context, id string) (*ShootSession, error)
	SavePhotos(ctx context.Context, photos []GeneratedPhoto) error
	ListPhotos(ctx context.Context, sessionID string) ([]GeneratedPhoto, error)
	SetApproval(ctx context.Context, photoID string, status ApprovalStatus) error
}

// SettingRepository reads and writes named runtime settings.
type SettingRepository interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}
