package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/calchukom/caldepaz-sub001/internal/domain/ticket"
)

type ticketRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	AssignedTo  *string   `db:"assigned_to"`
	Subject     string    `db:"subject"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Priority    string    `db:"priority"`
	Category    string    `db:"category"`
	BookingID   *string   `db:"booking_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, UserID: r.UserID, AssignedTo: r.AssignedTo,
		Subject: r.Subject, Description: r.Description,
		Status: ticket.Status(r.Status), Priority: r.Priority, Category: r.Category,
		BookingID: r.BookingID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const ticketColumns = `id, user_id, assigned_to, subject, description, status, priority, category, booking_id, created_at, updated_at`

type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `INSERT INTO support_tickets (user_id, assigned_to, subject, description, status, priority, category, booking_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, t.UserID, t.AssignedTo, t.Subject, t.Description, string(t.Status), t.Priority, t.Category, t.BookingID, t.CreatedAt, t.UpdatedAt).Scan(&t.ID); err != nil {
		return fmt.Errorf("チケット作成に失敗: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	var row ticketRow
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) List(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE 1=1`
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i := range rows {
		tickets[i] = rows[i].toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	query := `UPDATE support_tickets SET assigned_to = $1, status = $2, priority = $3, category = $4, updated_at = $5 WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, t.AssignedTo, string(t.Status), t.Priority, t.Category, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
