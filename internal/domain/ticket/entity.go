package ticket

import "time"

// Status はサポートチケットの状態を表す
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// allowedTransitions はチケットステータスの許可された遷移を定義する
var allowedTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed},
	StatusClosed:     {},
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

// Ticket はサポートチケットエンティティを表す
// Priority / Category は表示用の属性であり、状態遷移には影響しない
type Ticket struct {
	ID          string
	UserID      string
	AssignedTo  *string
	Subject     string
	Description string
	Status      Status
	Priority    string
	Category    string
	BookingID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTicket は新しいチケットを open 状態で作成する
func NewTicket(userID, subject, description, priority, category string, bookingID *string) *Ticket {
	now := time.Now()
	return &Ticket{
		UserID:      userID,
		Subject:     subject,
		Description: description,
		Status:      StatusOpen,
		Priority:    priority,
		Category:    category,
		BookingID:   bookingID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はチケットの検証を行う
func (t *Ticket) Validate() error {
	if t.UserID == "" {
		return ErrUserIDRequired
	}
	if t.Subject == "" {
		return ErrSubjectRequired
	}
	return nil
}

// Assign は担当者を割り当て、チケットを対応中にする
func (t *Ticket) Assign(agentID string) error {
	if t.Status != StatusOpen {
		return ErrTicketNotOpen
	}
	t.AssignedTo = &agentID
	t.Status = StatusInProgress
	t.UpdatedAt = time.Now()
	return nil
}

// Transition はステータス遷移を適用する
func (t *Ticket) Transition(to Status) error {
	if !CanTransition(t.Status, to) {
		return ErrInvalidTransition
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	return nil
}
