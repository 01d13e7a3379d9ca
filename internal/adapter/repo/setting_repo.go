package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lookbook/internal/domain"
	"lookbook/internal/sqlinline"
)

// SettingRepositoryPG implements domain.SettingRepository over a single
// name/value table. Reads are never cached; the provider registry depends
// on seeing the current value on every dispatch.
type SettingRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepositoryPG {
	return &SettingRepositoryPG{pool: pool}
}

func (r *SettingRepositoryPG) Get(ctx context.Context, name string) (string, error) {
	query := sqlinline.QSelectSetting
	row := r.pool.QueryRow(ctx, query, name)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (r *SettingRepositoryPG) Set(ctx context.Context, name, value string) error {
	query := sqlinline.QUpsertSetting
	_, err := r.pool.Exec(ctx, query, name, strings.TrimSpace(value))
	return err
}

var _ domain.SettingRepository = (*SettingRepositoryPG)(nil)
