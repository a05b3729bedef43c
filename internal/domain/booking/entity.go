package booking

import (
	"math"
	"time"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions は予約ステータスの許可された遷移を定義する
// キャンセルは pending / confirmed からのみ可能（active は completeBooking で終了させる）
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
	// 終端状態からの遷移は不可
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition は from から to への遷移が許可されているかを返す
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal は終端状態かを返す
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Booking は予約エンティティを表す
type Booking struct {
	ID           string
	UserID       string
	VehicleID    string
	LocationID   string
	BookingDate  time.Time
	ReturnDate   time.Time
	TotalAmount  float64
	Status       Status
	CancelReason string
	ConfirmedAt  *time.Time
	ActivatedAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewBooking は新しい予約を pending 状態で作成する
func NewBooking(userID, vehicleID, locationID string, bookingDate, returnDate time.Time, ratePerDay float64) *Booking {
	now := time.Now()
	return &Booking{
		UserID:      userID,
		VehicleID:   vehicleID,
		LocationID:  locationID,
		BookingDate: bookingDate,
		ReturnDate:  returnDate,
		TotalAmount: TotalAmount(ratePerDay, bookingDate, returnDate),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TotalAmount は日割り料金を計算する（端数の日は切り上げ）
func TotalAmount(ratePerDay float64, bookingDate, returnDate time.Time) float64 {
	days := math.Ceil(returnDate.Sub(bookingDate).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return ratePerDay * days
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.VehicleID == "" {
		return ErrVehicleIDRequired
	}
	if b.LocationID == "" {
		return ErrLocationIDRequired
	}
	if !b.BookingDate.Before(b.ReturnDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps は他の期間と重なるかを返す
func (b *Booking) Overlaps(bookingDate, returnDate time.Time) bool {
	return b.BookingDate.Before(returnDate) && b.ReturnDate.After(bookingDate)
}

// Confirm は予約を確定する
func (b *Booking) Confirm() error {
	if err := b.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	b.ConfirmedAt = &now
	return nil
}

// Activate は予約を利用中にする（車両の引き渡し）
func (b *Booking) Activate() error {
	if err := b.transition(StatusActive); err != nil {
		return err
	}
	now := time.Now()
	b.ActivatedAt = &now
	return nil
}

// Complete は予約を完了する（車両の返却）
func (b *Booking) Complete() error {
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	b.CompletedAt = &now
	return nil
}

// Cancel は予約をキャンセルする
func (b *Booking) Cancel(reason string) error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	if err := b.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	b.CancelReason = reason
	b.CancelledAt = &now
	return nil
}

// transition はステータス遷移を適用する
func (b *Booking) transition(to Status) error {
	if !CanTransition(b.Status, to) {
		return ErrInvalidTransition
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

// BlocksVehicle は車両の利用を占有するステータスかを返す
func (b *Booking) BlocksVehicle() bool {
	return b.Status == StatusConfirmed || b.Status == StatusActive
}
