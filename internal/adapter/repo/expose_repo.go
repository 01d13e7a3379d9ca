package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lookbook/internal/domain"
	"lookbook/internal/sqlinline"
)

// ExposeRepositoryPG implements domain.ExposeRepository.
type ExposeRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewExposeRepository creates an expose repository backed by PostgreSQL.
func NewExposeRepository(pool *pgxpool.Pool) *ExposeRepositoryPG {
	return &ExposeRepositoryPG{pool: pool}
}

// Create inserts a new expose record in draft status.
func (r *ExposeRepositoryPG) Create(ctx context.Context, expose *domain.Expose) error {
	if expose.ID == "" {
		expose.ID = uuid.NewString()
	}
	if expose.Status == "" {
		expose.Status = domain.StatusDraft
	}
	slides, err := json.Marshal(expose.Slides)
	if err != nil {
		return fmt.Errorf("encode slides: %w", err)
	}
	variants, err := json.Marshal(expose.Variants)
	if err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}
	query := sqlinline.QInsertExpose
	_, err = r.pool.Exec(ctx, query,
		expose.ID,
		expose.Status,
		nullableBytes(expose.Facets),
		expose.HeroImageURL,
		variants,
		expose.SelectedVariant,
		expose.ErrorMessage,
		slides,
		expose.Provider,
	)
	return err
}

// Update applies a partial merge. Nil fields keep their stored value, so no
// read-before-write cycle is needed for the fields this layer touches.
func (r *ExposeRepositoryPG) Update(ctx context.Context, id string, update domain.ExposeUpdate) error {
	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}
	var variants []byte
	if update.Variants != nil {
		encoded, err := json.Marshal(update.Variants)
		if err != nil {
			return fmt.Errorf("encode variants: %w", err)
		}
		variants = encoded
	}
	var slides []byte
	if update.Slides != nil {
		encoded, err := json.Marshal(update.Slides)
		if err != nil {
			return fmt.Errorf("encode slides: %w", err)
		}
		slides = encoded
	}
	query := sqlinline.QUpdateExposePartial
	tag, err := r.pool.Exec(ctx, query,
		id,
		status,
		update.HeroImageURL,
		nullableBytes(variants),
		update.SelectedVariant,
		update.ErrorMessage,
		nullableBytes(slides),
		update.Provider,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches an expose by its identifier.
func (r *ExposeRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Expose, error) {
	query := sqlinline.QSelectExposeByID
	row := r.pool.QueryRow(ctx, query, id)
	var (
		expose   domain.Expose
		variants []byte
		slides   []byte
	)
	if err := row.Scan(
		&expose.ID,
		&expose.Status,
		&expose.Facets,
		&expose.HeroImageURL,
		&variants,
		&expose.SelectedVariant,
		&expose.ErrorMessage,
		&slides,
		&expose.Provider,
		&expose.CreatedAt,
		&expose.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &expose.Variants); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
	}
	if len(slides) > 0 {
		if err := json.Unmarshal(slides, &expose.Slides); err != nil {
			return nil, fmt.Errorf("decode slides: %w", err)
		}
	}
	return &expose, nil
}

// MarkStaleProcessing flips exposes stuck in processing longer than the
// given age to error. Covers dispatches orphaned by a crash between the
// processing write and the terminal write.
func (r *ExposeRepositoryPG) MarkStaleProcessing(ctx context.Context, olderThan time.Duration, message string) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	query := sqlinline.QMarkStaleExposes
	tag, err := r.pool.Exec(ctx, query, domain.StatusError, message, domain.StatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.ExposeRepository = (*ExposeRepositoryPG)(nil)
