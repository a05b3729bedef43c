package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
)

type vehicleRow struct {
	ID              string     `db:"id"`
	SpecificationID string     `db:"specification_id"`
	LocationID      string     `db:"location_id"`
	LicensePlate    string     `db:"license_plate"`
	Status          string     `db:"status"`
	RentalRate      float64    `db:"rental_rate"`
	Mileage         int        `db:"mileage"`
	FuelLevel       int        `db:"fuel_level"`
	LastServiceAt   *time.Time `db:"last_service_at"`
	NextServiceAt   *time.Time `db:"next_service_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	Version         int        `db:"version"`
}

func (r *vehicleRow) toEntity() *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID: r.ID, SpecificationID: r.SpecificationID, LocationID: r.LocationID,
		LicensePlate: r.LicensePlate, Status: vehicle.Status(r.Status),
		RentalRate: r.RentalRate, Mileage: r.Mileage, FuelLevel: r.FuelLevel,
		LastServiceAt: r.LastServiceAt, NextServiceAt: r.NextServiceAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const vehicleColumns = `id, specification_id, location_id, license_plate, status, rental_rate, mileage, fuel_level, last_service_at, next_service_at, created_at, updated_at, version`

type VehicleRepository struct{ db *sqlx.DB }

func NewVehicleRepository(db *sqlx.DB) *VehicleRepository { return &VehicleRepository{db: db} }

func (r *VehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	query := `INSERT INTO vehicles (specification_id, location_id, license_plate, status, rental_rate, mileage, fuel_level, last_service_at, next_service_at, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, v.SpecificationID, v.LocationID, v.LicensePlate, string(v.Status), v.RentalRate, v.Mileage, v.FuelLevel, v.LastServiceAt, v.NextServiceAt, v.CreatedAt, v.UpdatedAt, v.Version).Scan(&v.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return vehicle.ErrLicensePlateExists
		}
		return fmt.Errorf("車両作成に失敗: %w", err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	var row vehicleRow
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vehicle.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("車両取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *VehicleRepository) List(ctx context.Context, filter vehicle.ListFilter) ([]*vehicle.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	args := []interface{}{}
	if filter.LocationID != "" {
		args = append(args, filter.LocationID)
		query += fmt.Sprintf(" AND location_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []vehicleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("車両一覧取得に失敗: %w", err)
	}
	vehicles := make([]*vehicle.Vehicle, len(rows))
	for i := range rows {
		vehicles[i] = rows[i].toEntity()
	}
	return vehicles, nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	query := `UPDATE vehicles SET location_id = $1, rental_rate = $2, mileage = $3, fuel_level = $4, last_service_at = $5, next_service_at = $6, status = $7, updated_at = $8, version = version + 1 WHERE id = $9 AND version = $10`
	result, err := r.db.ExecContext(ctx, query, v.LocationID, v.RentalRate, v.Mileage, v.FuelLevel, v.LastServiceAt, v.NextServiceAt, string(v.Status), v.UpdatedAt, v.ID, v.Version)
	if err != nil {
		return fmt.Errorf("車両更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return vehicle.ErrOptimisticLockConflict
	}
	v.Version++
	return nil
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id string, status vehicle.Status) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE vehicles SET status = $1, updated_at = NOW(), version = version + 1 WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("車両ステータス更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return vehicle.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) CountAvailableByLocation(ctx context.Context, locationID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM vehicles WHERE location_id = $1 AND status = 'available'`, locationID)
	if err != nil {
		return 0, fmt.Errorf("貸出可能台数取得に失敗: %w", err)
	}
	return count, nil
}

var _ vehicle.Repository = (*VehicleRepository)(nil)
