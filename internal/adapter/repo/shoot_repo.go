package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lookbook/internal/domain"
	"lookbook/internal/sqlinline"
)

// ShootRepositoryPG implements domain.ShootRepository.
type ShootRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewShootRepository(pool *pgxpool.Pool) *ShootRepositoryPG {
	return &ShootRepositoryPG{pool: pool}
}

func (r *ShootRepositoryPG) CreateSession(ctx context.Context, session *domain.ShootSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = domain.StatusDraft
	}
	views, err := json.Marshal(session.Views)
	if err != nil {
		return fmt.Errorf("encode views: %w", err)
	}
	query := sqlinline.QInsertShootSession
	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.Status,
		nullableBytes(session.Facets),
		views,
		session.ErrorMessage,
		session.Provider,
	)
	return err
}

func (r *ShootRepositoryPG) UpdateSession(ctx context.Context, id string, status domain.GenerationStatus, errMsg *string) error {
	query := sqlinline.QUpdateShootSession
	tag, err := r.pool.Exec(ctx, query, id, status, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ShootRepositoryPG) GetSession(ctx context.Context, id string) (*domain.ShootSession, error) {
	query := sqlinline.QSelectShootSession
	row := r.pool.QueryRow(ctx, query, id)
	var (
		session domain.ShootSession
		views   []byte
	)
	if err := row.Scan(
		&session.ID,
		&session.Status,
		&session.Facets,
		&views,
		&session.ErrorMessage,
		&session.Provider,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(views) > 0 {
		if err := json.Unmarshal(views, &session.Views); err != nil {
			return nil, fmt.Errorf("decode views: %w", err)
		}
	}
	return &session, nil
}

func (r *ShootRepositoryPG) SavePhotos(ctx context.Context, photos []domain.GeneratedPhoto) error {
	query := sqlinline.QInsertGeneratedPhoto
	for i := range photos {
		if photos[i].ID == "" {
			photos[i].ID = uuid.NewString()
		}
		if photos[i].ApprovalStatus == "" {
			photos[i].ApprovalStatus = domain.ApprovalPending
		}
		if _, err := r.pool.Exec(ctx, query,
			photos[i].ID,
			photos[i].SessionID,
			photos[i].View,
			photos[i].VariantIndex,
			photos[i].URL,
			photos[i].ApprovalStatus,
		); err != nil {
			return fmt.Errorf("insert photo %s/%d: %w", photos[i].View, photos[i].VariantIndex, err)
		}
	}
	return nil
}

func (r *ShootRepositoryPG) ListPhotos(ctx context.Context, sessionID string) ([]domain.GeneratedPhoto, error) {
	query := sqlinline.QSelectSessionPhotos
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var photos []domain.GeneratedPhoto
	for rows.Next() {
		var p domain.GeneratedPhoto
		if err := rows.Scan(&p.ID, &p.SessionID, &p.View, &p.VariantIndex, &p.URL, &p.ApprovalStatus, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// SetApproval records a reviewer decision. Referencing an unknown photo id
// is rejected with ErrNotFound before any state change.
func (r *ShootRepositoryPG) SetApproval(ctx context.Context, photoID string, status domain.ApprovalStatus) error {
	query := sqlinline.QSetPhotoApproval
	tag, err := r.pool.Exec(ctx, query, photoID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ShootRepository = (*ShootRepositoryPG)(nil)
