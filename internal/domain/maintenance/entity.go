package maintenance

import "time"

// Status は整備記録の状態を表す
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// allowedTransitions は整備ステータスの許可された遷移を定義する
var allowedTransitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
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

// Record は整備記録エンティティを表す
// in_progress の間は対象車両の貸出をブロックする
type Record struct {
	ID          string
	VehicleID   string
	ServiceType string
	Description string
	Cost        float64
	ScheduledAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRecord は新しい整備記録を scheduled 状態で作成する
func NewRecord(vehicleID, serviceType, description string, cost float64, scheduledAt time.Time) *Record {
	now := time.Now()
	return &Record{
		VehicleID:   vehicleID,
		ServiceType: serviceType,
		Description: description,
		Cost:        cost,
		ScheduledAt: scheduledAt,
		Status:      StatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は整備記録の検証を行う
func (r *Record) Validate() error {
	if r.VehicleID == "" {
		return ErrVehicleIDRequired
	}
	if r.ServiceType == "" {
		return ErrServiceTypeRequired
	}
	if r.Cost < 0 {
		return ErrInvalidCost
	}
	return nil
}

// Start は整備を開始する
func (r *Record) Start() error {
	if err := r.transition(StatusInProgress); err != nil {
		return err
	}
	now := time.Now()
	r.StartedAt = &now
	return nil
}

// Complete は整備を完了する
func (r *Record) Complete() error {
	if err := r.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	r.CompletedAt = &now
	return nil
}

// Cancel は整備を取り消す
func (r *Record) Cancel() error {
	return r.transition(StatusCancelled)
}

func (r *Record) transition(to Status) error {
	if !CanTransition(r.Status, to) {
		return ErrInvalidTransition
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

// BlocksVehicle は車両の貸出をブロックする状態かを返す
func (r *Record) BlocksVehicle() bool {
	return r.Status == StatusInProgress
}
