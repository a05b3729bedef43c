package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
)

type maintenanceRow struct {
	ID          string     `db:"id"`
	VehicleID   string     `db:"vehicle_id"`
	ServiceType string     `db:"service_type"`
	Description string     `db:"description"`
	Cost        float64    `db:"cost"`
	ScheduledAt time.Time  `db:"scheduled_at"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r *maintenanceRow) toEntity() *maintenance.Record {
	return &maintenance.Record{
		ID: r.ID, VehicleID: r.VehicleID, ServiceType: r.ServiceType,
		Description: r.Description, Cost: r.Cost, ScheduledAt: r.ScheduledAt,
		StartedAt: r.StartedAt, CompletedAt: r.CompletedAt,
		Status: maintenance.Status(r.Status), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const maintenanceColumns = `id, vehicle_id, service_type, description, cost, scheduled_at, started_at, completed_at, status, created_at, updated_at`

type MaintenanceRepository struct{ db *sqlx.DB }

func NewMaintenanceRepository(db *sqlx.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(ctx context.Context, rec *maintenance.Record) error {
	query := `INSERT INTO maintenance_records (vehicle_id, service_type, description, cost, scheduled_at, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, rec.VehicleID, rec.ServiceType, rec.Description, rec.Cost, rec.ScheduledAt, string(rec.Status), rec.CreatedAt, rec.UpdatedAt).Scan(&rec.ID); err != nil {
		return fmt.Errorf("整備記録作成に失敗: %w", err)
	}
	return nil
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id string) (*maintenance.Record, error) {
	var row maintenanceRow
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_records WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, maintenance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("整備記録取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *MaintenanceRepository) GetByVehicleID(ctx context.Context, vehicleID string, limit, offset int) ([]*maintenance.Record, error) {
	var rows []maintenanceRow
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_records WHERE vehicle_id = $1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, vehicleID, limit, offset); err != nil {
		return nil, fmt.Errorf("整備記録一覧取得に失敗: %w", err)
	}
	return toRecords(rows), nil
}

func (r *MaintenanceRepository) GetBlockingByVehicle(ctx context.Context, vehicleID string) ([]*maintenance.Record, error) {
	var rows []maintenanceRow
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_records WHERE vehicle_id = $1 AND status = 'in_progress'`
	if err := r.db.SelectContext(ctx, &rows, query, vehicleID); err != nil {
		return nil, fmt.Errorf("進行中整備取得に失敗: %w", err)
	}
	return toRecords(rows), nil
}

func (r *MaintenanceRepository) Update(ctx context.Context, rec *maintenance.Record) error {
	query := `UPDATE maintenance_records SET service_type = $1, description = $2, cost = $3, scheduled_at = $4, started_at = $5, completed_at = $6, status = $7, updated_at = $8 WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query, rec.ServiceType, rec.Description, rec.Cost, rec.ScheduledAt, rec.StartedAt, rec.CompletedAt, string(rec.Status), rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("整備記録更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return maintenance.ErrRecordNotFound
	}
	return nil
}

func toRecords(rows []maintenanceRow) []*maintenance.Record {
	result := make([]*maintenance.Record, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ maintenance.Repository = (*MaintenanceRepository)(nil)
