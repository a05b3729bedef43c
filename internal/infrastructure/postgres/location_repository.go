package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/calchukom/caldepaz-sub001/internal/domain/location"
)

type locationRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	City      string    `db:"city"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *locationRow) toEntity() *location.Location {
	return &location.Location{
		ID: r.ID, Name: r.Name, Address: r.Address, City: r.City,
		Phone: r.Phone, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type LocationRepository struct{ db *sqlx.DB }

func NewLocationRepository(db *sqlx.DB) *LocationRepository { return &LocationRepository{db: db} }

func (r *LocationRepository) Create(ctx context.Context, l *location.Location) error {
	query := `INSERT INTO locations (name, address, city, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, l.Name, l.Address, l.City, l.Phone, l.CreatedAt, l.UpdatedAt).Scan(&l.ID); err != nil {
		return fmt.Errorf("拠点作成に失敗: %w", err)
	}
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id string) (*location.Location, error) {
	var row locationRow
	query := `SELECT id, name, address, city, phone, created_at, updated_at FROM locations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, location.ErrLocationNotFound
		}
		return nil, fmt.Errorf("拠点取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *LocationRepository) List(ctx context.Context, limit, offset int) ([]*location.Location, error) {
	var rows []locationRow
	query := `SELECT id, name, address, city, phone, created_at, updated_at FROM locations ORDER BY name LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("拠点一覧取得に失敗: %w", err)
	}
	locations := make([]*location.Location, len(rows))
	for i := range rows {
		locations[i] = rows[i].toEntity()
	}
	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, l *location.Location) error {
	query := `UPDATE locations SET name = $1, address = $2, city = $3, phone = $4, updated_at = $5 WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, l.Name, l.Address, l.City, l.Phone, l.UpdatedAt, l.ID)
	if err != nil {
		return fmt.Errorf("拠点更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return location.ErrLocationNotFound
	}
	return nil
}

func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		// 予約からの外部キー参照が残っている場合
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23503" {
			return location.ErrLocationInUse
		}
		return fmt.Errorf("拠点削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return location.ErrLocationNotFound
	}
	return nil
}

var _ location.Repository = (*LocationRepository)(nil)
