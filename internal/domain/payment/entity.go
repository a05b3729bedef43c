package payment

import "time"

// Status は支払いの状態を表す
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// Method は支払い方法を表す
type Method string

const (
	MethodCard         Method = "card"
	MethodMobileMoney  Method = "mobile_money"
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
)

// allowedTransitions は支払いステータスの許可された遷移を定義する
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusRefunded},
	// failed / refunded は終端状態
	StatusFailed:   {},
	StatusRefunded: {},
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

// Payment は支払いエンティティを表す
// 1つの予約に対して複数の支払い試行が存在しうるが、
// 予約の精算に数えられるのは completed のものだけ
type Payment struct {
	ID            string
	BookingID     string
	UserID        string
	Amount        float64
	Method        Method
	Status        Status
	FailureReason string
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment は新しい支払いを pending 状態で作成する
func NewPayment(bookingID, userID string, amount float64, method Method) *Payment {
	now := time.Now()
	return &Payment{
		BookingID: bookingID,
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は支払いの検証を行う
func (p *Payment) Validate() error {
	if p.BookingID == "" {
		return ErrBookingIDRequired
	}
	if p.UserID == "" {
		return ErrUserIDRequired
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch p.Method {
	case MethodCard, MethodMobileMoney, MethodBankTransfer, MethodCash:
	default:
		return ErrInvalidMethod
	}
	return nil
}

// Transition はステータス遷移を適用する
// completed への遷移は冪等（既に completed なら何もしない）
func (p *Payment) Transition(to Status, failureReason string) error {
	if p.Status == StatusCompleted && to == StatusCompleted {
		return nil
	}
	if !CanTransition(p.Status, to) {
		return ErrInvalidTransition
	}
	now := time.Now()
	p.Status = to
	p.UpdatedAt = now
	switch to {
	case StatusCompleted:
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	case StatusFailed:
		p.FailureReason = failureReason
	}
	return nil
}

// IsSettled は予約の精算に数えられる状態かを返す
func (p *Payment) IsSettled() bool {
	return p.Status == StatusCompleted
}
