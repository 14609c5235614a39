package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artemivanov/shortlink/internal/entity"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

type shortLinkRow struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	AccessCount int64     `db:"access_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *shortLinkRow) toEntity() *entity.ShortLink {
	return &entity.ShortLink{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		LinkStats: entity.LinkStats{
			AccessCount: r.AccessCount,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type ShortLinkRepository struct {
	db *sqlx.DB
}

func NewShortLinkRepository(db *sqlx.DB) *ShortLinkRepository {
	return &ShortLinkRepository{db: db}
}

func (r *ShortLinkRepository) Save(ctx context.Context, shortCode, originalURL string) (*entity.ShortLink, error) {
	const op = "adapter.repository.postgres.ShortLinkRepository.Save"
	const query = `INSERT INTO short_links(short_code, original_url) VALUES ($1, $2) RETURNING *`

	var row shortLinkRow

	if err := r.db.GetContext(ctx, &row, query, shortCode, originalURL); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into short_links table: %w", op, err)
	}

	return row.toEntity(), nil
}

func (r *ShortLinkRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.ShortLink, error) {
	const op = "adapter.repository.postgres.ShortLinkRepository.RetrieveByShortCode"
	const query = `SELECT * FROM short_links WHERE short_code = $1`

	var row shortLinkRow

	if err := r.db.GetContext(ctx, &row, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from short_links table: %w", op, err)
	}

	return row.toEntity(), nil
}

// RetrieveAndUpdateStats increments access_count inside the UPDATE statement,
// so concurrent resolutions of the same short code never lose counts.
func (r *ShortLinkRepository) RetrieveAndUpdateStats(ctx context.Context, shortCode string) (*entity.ShortLink, error) {
	const op = "adapter.repository.postgres.ShortLinkRepository.RetrieveAndUpdateStats"
	const query = `UPDATE short_links SET access_count = access_count + 1 WHERE short_code = $1 RETURNING *`

	var row shortLinkRow

	if err := r.db.GetContext(ctx, &row, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get and update short_links table row: %w", op, err)
	}

	return row.toEntity(), nil
}

func (r *ShortLinkRepository) Update(ctx context.Context, shortCode, originalURL string) (*entity.ShortLink, error) {
	const op = "adapter.repository.postgres.ShortLinkRepository.Update"
	const query = `UPDATE short_links SET original_url = $1, updated_at = now() WHERE short_code = $2 RETURNING *`

	var row shortLinkRow

	if err := r.db.GetContext(ctx, &row, query, originalURL, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update short_links table row: %w", op, err)
	}

	return row.toEntity(), nil
}

func (r *ShortLinkRepository) Remove(ctx context.Context, shortCode string) error {
	const op = "adapter.repository.postgres.ShortLinkRepository.Remove"
	const query = `DELETE FROM short_links WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to delete from short_links table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return nil
}
