package vehicle

import "time"

// Status は車両の状態を表す
// available/reserved/rented/maintenance は予約・整備の状況から導出され、
// out_of_service/damaged は管理者が手動で設定する固定状態
type Status string

const (
	StatusAvailable    Status = "available"
	StatusRented       Status = "rented"
	StatusMaintenance  Status = "maintenance"
	StatusOutOfService Status = "out_of_service"
	StatusReserved     Status = "reserved"
	StatusDamaged      Status = "damaged"
)

// Vehicle は貸出可能な車両エンティティを表す
type Vehicle struct {
	ID              string
	SpecificationID string
	LocationID      string
	LicensePlate    string
	Status          Status
	RentalRate      float64 // 1日あたりの料金
	Mileage         int
	FuelLevel       int // 残燃料（%）
	LastServiceAt   *time.Time
	NextServiceAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int // 楽観的ロック用
}

// NewVehicle は新しい車両を作成する
func NewVehicle(specificationID, locationID, licensePlate string, rentalRate float64) *Vehicle {
	now := time.Now()
	return &Vehicle{
		SpecificationID: specificationID,
		LocationID:      locationID,
		LicensePlate:    licensePlate,
		Status:          StatusAvailable,
		RentalRate:      rentalRate,
		FuelLevel:       100,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         0,
	}
}

// IsAvailable は車両が貸出可能かを返す
func (v *Vehicle) IsAvailable() bool {
	return v.Status == StatusAvailable
}

// HasManualStatus は手動設定の固定状態かを返す
// 固定状態の間はステータス導出の対象外となる
func (v *Vehicle) HasManualStatus() bool {
	return v.Status == StatusOutOfService || v.Status == StatusDamaged
}

// Validate は車両の検証を行う
func (v *Vehicle) Validate() error {
	if v.SpecificationID == "" {
		return ErrSpecificationIDRequired
	}
	if v.LocationID == "" {
		return ErrLocationIDRequired
	}
	if v.LicensePlate == "" {
		return ErrLicensePlateRequired
	}
	if v.RentalRate <= 0 {
		return ErrInvalidRentalRate
	}
	return nil
}

// ValidStatus はステータス文字列が定義済みかを返す
func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance,
		StatusOutOfService, StatusReserved, StatusDamaged:
		return true
	}
	return false
}
