package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
)

type MaintenanceService struct {
	maintenanceRepo maintenance.Repository
	vehicleRepo     vehicle.Repository
	resyncer        VehicleStatusResyncer
}

func NewMaintenanceService(
	mr maintenance.Repository,
	vr vehicle.Repository,
	resyncer VehicleStatusResyncer,
) *MaintenanceService {
	return &MaintenanceService{maintenanceRepo: mr, vehicleRepo: vr, resyncer: resyncer}
}

type ScheduleMaintenanceInput struct {
	VehicleID   string
	ServiceType string
	Description string
	Cost        float64
	ScheduledAt time.Time
}

// ScheduleMaintenance は整備を予定として登録する
// scheduled の段階では車両の貸出をブロックしない
func (s *MaintenanceService) ScheduleMaintenance(ctx context.Context, input ScheduleMaintenanceInput) (*maintenance.Record, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, input.VehicleID); err != nil {
		return nil, err
	}
	rec := maintenance.NewRecord(input.VehicleID, input.ServiceType, input.Description, input.Cost, input.ScheduledAt)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := s.maintenanceRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MaintenanceService) GetRecord(ctx context.Context, id string) (*maintenance.Record, error) {
	return s.maintenanceRepo.GetByID(ctx, id)
}

func (s *MaintenanceService) GetVehicleRecords(ctx context.Context, vehicleID string, limit, offset int) ([]*maintenance.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.maintenanceRepo.GetByVehicleID(ctx, vehicleID, limit, offset)
}

// StartMaintenance は整備を開始する
// 貸出中の車両は整備を開始できない
func (s *MaintenanceService) StartMaintenance(ctx context.Context, id string) (*maintenance.Record, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicleRepo.GetByID(ctx, rec.VehicleID)
	if err != nil {
		return nil, err
	}
	if v.Status == vehicle.StatusRented {
		return nil, maintenance.ErrVehicleRented
	}
	if err := rec.Start(); err != nil {
		return nil, err
	}
	if err := s.maintenanceRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.resync(ctx, rec.VehicleID)
	return rec, nil
}

// CompleteMaintenance は整備を完了し、車両のサービス日を更新する
func (s *MaintenanceService) CompleteMaintenance(ctx context.Context, id string) (*maintenance.Record, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Complete(); err != nil {
		return nil, err
	}
	if err := s.maintenanceRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	if v, err := s.vehicleRepo.GetByID(ctx, rec.VehicleID); err == nil {
		now := time.Now()
		v.LastServiceAt = &now
		v.UpdatedAt = now
		if err := s.vehicleRepo.Update(ctx, v); err != nil {
			logger.Warn("整備完了後の車両更新に失敗",
				zap.String("vehicle_id", rec.VehicleID), zap.Error(err))
		}
	}

	s.resync(ctx, rec.VehicleID)
	return rec, nil
}

// CancelMaintenance は整備を取り消す
func (s *MaintenanceService) CancelMaintenance(ctx context.Context, id string) (*maintenance.Record, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Cancel(); err != nil {
		return nil, err
	}
	if err := s.maintenanceRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.resync(ctx, rec.VehicleID)
	return rec, nil
}

func (s *MaintenanceService) resync(ctx context.Context, vehicleID string) {
	if s.resyncer == nil {
		return
	}
	if _, err := s.resyncer.Resync(ctx, vehicleID); err != nil {
		logger.Error("車両ステータス再導出に失敗",
			zap.String("vehicle_id", vehicleID), zap.Error(err))
	}
}
