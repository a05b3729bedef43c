package application

import (
	"context"
	"errors"
	"time"

	"github.com/calchukom/caldepaz-sub001/internal/domain/location"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
	redisinfra "github.com/calchukom/caldepaz-sub001/internal/infrastructure/redis"
)

// availableCountTTL は空き台数キャッシュの有効期間
const availableCountTTL = 30 * time.Second

// manualStatusClearer は手動固定の解除時に実状態を再導出するインターフェース
type manualStatusClearer interface {
	ClearManualStatus(ctx context.Context, vehicleID string) (vehicle.Status, error)
}

type VehicleService struct {
	vehicleRepo vehicle.Repository
	specRepo    vehicle.SpecificationRepository
	resyncer    manualStatusClearer
	cache       *redisinfra.FleetCache
}

func NewVehicleService(
	vr vehicle.Repository,
	sr vehicle.SpecificationRepository,
	resyncer manualStatusClearer,
	cache *redisinfra.FleetCache,
) *VehicleService {
	return &VehicleService{vehicleRepo: vr, specRepo: sr, resyncer: resyncer, cache: cache}
}

type CreateVehicleInput struct {
	SpecificationID string
	LocationID      string
	LicensePlate    string
	RentalRate      float64
}

func (s *VehicleService) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*vehicle.Vehicle, error) {
	if _, err := s.specRepo.GetByID(ctx, input.SpecificationID); err != nil {
		return nil, err
	}
	v := vehicle.NewVehicle(input.SpecificationID, input.LocationID, input.LicensePlate, input.RentalRate)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *VehicleService) ListVehicles(ctx context.Context, filter vehicle.ListFilter) ([]*vehicle.Vehicle, error) {
	return s.vehicleRepo.List(ctx, filter)
}

type UpdateVehicleInput struct {
	VehicleID     string
	LocationID    string
	RentalRate    float64
	Mileage       int
	FuelLevel     int
	LastServiceAt *time.Time
	NextServiceAt *time.Time
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, input UpdateVehicleInput) (*vehicle.Vehicle, error) {
	v, err := s.vehicleRepo.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	oldLocation := v.LocationID
	if input.LocationID != "" {
		v.LocationID = input.LocationID
	}
	if input.RentalRate > 0 {
		v.RentalRate = input.RentalRate
	}
	if input.Mileage > 0 {
		v.Mileage = input.Mileage
	}
	if input.FuelLevel > 0 {
		v.FuelLevel = input.FuelLevel
	}
	if input.LastServiceAt != nil {
		v.LastServiceAt = input.LastServiceAt
	}
	if input.NextServiceAt != nil {
		v.NextServiceAt = input.NextServiceAt
	}
	v.UpdatedAt = time.Now()
	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldLocation)
	if v.LocationID != oldLocation {
		s.invalidate(ctx, v.LocationID)
	}
	return v, nil
}

// SetManualStatus は車両の手動ステータスを設定する
// 設定できるのは out_of_service / damaged とその解除（available指定）のみ。
// 解除時は available を直接書かず、予約・整備の現況から再導出した値を保存する。
// active 予約が残ったままの車両が available として永続化されることはない
func (s *VehicleService) SetManualStatus(ctx context.Context, id string, status vehicle.Status) (*vehicle.Vehicle, error) {
	switch status {
	case vehicle.StatusOutOfService, vehicle.StatusDamaged:
	case vehicle.StatusAvailable:
		return s.clearManualStatus(ctx, id)
	default:
		return nil, vehicle.ErrManualStatusOnly
	}
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Status = status
	v.UpdatedAt = time.Now()
	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.invalidate(ctx, v.LocationID)
	return v, nil
}

// clearManualStatus は手動固定を解除し、再導出後の車両を返す
func (s *VehicleService) clearManualStatus(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	derived, err := s.resyncer.ClearManualStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Status = derived
	v.UpdatedAt = time.Now()
	return v, nil
}

// AvailableCount は拠点の貸出可能台数を返す（キャッシュ優先）
func (s *VehicleService) AvailableCount(ctx context.Context, locationID string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, locationID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			// キャッシュ障害時はDBにフォールバック
			return s.vehicleRepo.CountAvailableByLocation(ctx, locationID)
		}
	}
	count, err := s.vehicleRepo.CountAvailableByLocation(ctx, locationID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetAvailableCount(ctx, locationID, count, availableCountTTL)
	}
	return count, nil
}

type CreateSpecificationInput struct {
	Make         string
	Model        string
	Year         int
	Category     string
	Seats        int
	Transmission string
	FuelType     string
	Features     []string
}

func (s *VehicleService) CreateSpecification(ctx context.Context, input CreateSpecificationInput) (*vehicle.Specification, error) {
	spec := vehicle.NewSpecification(input.Make, input.Model, input.Year, input.Category, input.Seats, input.Transmission, input.FuelType, input.Features)
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := s.specRepo.Create(ctx, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func (s *VehicleService) GetSpecification(ctx context.Context, id string) (*vehicle.Specification, error) {
	return s.specRepo.GetByID(ctx, id)
}

func (s *VehicleService) ListSpecifications(ctx context.Context, limit, offset int) ([]*vehicle.Specification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.specRepo.List(ctx, limit, offset)
}

func (s *VehicleService) invalidate(ctx context.Context, locationID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, locationID)
}

// LocationService は貸出拠点を管理する
type LocationService struct {
	locationRepo location.Repository
	bookingRepo  bookingExistenceChecker
}

// bookingExistenceChecker は拠点削除ガード用の最小インターフェース
type bookingExistenceChecker interface {
	ExistsByLocation(ctx context.Context, locationID string) (bool, error)
}

func NewLocationService(lr location.Repository, bc bookingExistenceChecker) *LocationService {
	return &LocationService{locationRepo: lr, bookingRepo: bc}
}

type CreateLocationInput struct {
	Name    string
	Address string
	City    string
	Phone   string
}

func (s *LocationService) CreateLocation(ctx context.Context, input CreateLocationInput) (*location.Location, error) {
	l := location.NewLocation(input.Name, input.Address, input.City, input.Phone)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LocationService) GetLocation(ctx context.Context, id string) (*location.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

func (s *LocationService) ListLocations(ctx context.Context, limit, offset int) ([]*location.Location, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.locationRepo.List(ctx, limit, offset)
}

// DeleteLocation は拠点を削除する
// 拠点を参照する予約が1件でも存在する場合は削除を拒否する
func (s *LocationService) DeleteLocation(ctx context.Context, id string) error {
	exists, err := s.bookingRepo.ExistsByLocation(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return location.ErrLocationInUse
	}
	return s.locationRepo.Delete(ctx, id)
}
