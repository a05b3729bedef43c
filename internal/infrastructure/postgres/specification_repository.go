package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
)

type specificationRow struct {
	ID           string         `db:"id"`
	Make         string         `db:"make"`
	Model        string         `db:"model"`
	Year         int            `db:"year"`
	Category     string         `db:"category"`
	Seats        int            `db:"seats"`
	Transmission string         `db:"transmission"`
	FuelType     string         `db:"fuel_type"`
	Features     pq.StringArray `db:"features"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *specificationRow) toEntity() *vehicle.Specification {
	return &vehicle.Specification{
		ID: r.ID, Make: r.Make, Model: r.Model, Year: r.Year,
		Category: r.Category, Seats: r.Seats,
		Transmission: r.Transmission, FuelType: r.FuelType,
		Features: []string(r.Features), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type SpecificationRepository struct{ db *sqlx.DB }

func NewSpecificationRepository(db *sqlx.DB) *SpecificationRepository {
	return &SpecificationRepository{db: db}
}

func (r *SpecificationRepository) Create(ctx context.Context, s *vehicle.Specification) error {
	query := `INSERT INTO vehicle_specifications (make, model, year, category, seats, transmission, fuel_type, features, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, s.Make, s.Model, s.Year, s.Category, s.Seats, s.Transmission, s.FuelType, pq.Array(s.Features), s.CreatedAt, s.UpdatedAt).Scan(&s.ID); err != nil {
		return fmt.Errorf("車種テンプレート作成に失敗: %w", err)
	}
	return nil
}

func (r *SpecificationRepository) GetByID(ctx context.Context, id string) (*vehicle.Specification, error) {
	var row specificationRow
	query := `SELECT id, make, model, year, category, seats, transmission, fuel_type, features, created_at, updated_at FROM vehicle_specifications WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vehicle.ErrSpecificationNotFound
		}
		return nil, fmt.Errorf("車種テンプレート取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SpecificationRepository) List(ctx context.Context, limit, offset int) ([]*vehicle.Specification, error) {
	var rows []specificationRow
	query := `SELECT id, make, model, year, category, seats, transmission, fuel_type, features, created_at, updated_at FROM vehicle_specifications ORDER BY make, model LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("車種テンプレート一覧取得に失敗: %w", err)
	}
	specs := make([]*vehicle.Specification, len(rows))
	for i := range rows {
		specs[i] = rows[i].toEntity()
	}
	return specs, nil
}

var _ vehicle.SpecificationRepository = (*SpecificationRepository)(nil)
