package application

import (
	"context"

	"github.com/calchukom/caldepaz-sub001/internal/domain/ticket"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

type TicketService struct {
	ticketRepo ticket.Repository
	userRepo   user.Repository
}

func NewTicketService(tr ticket.Repository, ur user.Repository) *TicketService {
	return &TicketService{ticketRepo: tr, userRepo: ur}
}

type CreateTicketInput struct {
	UserID      string
	Subject     string
	Description string
	Priority    string
	Category    string
	BookingID   *string
}

func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*ticket.Ticket, error) {
	t := ticket.NewTicket(input.UserID, input.Subject, input.Description, input.Priority, input.Category, input.BookingID)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, id)
}

func (s *TicketService) ListTickets(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, error) {
	return s.ticketRepo.List(ctx, filter)
}

// AssignAgent は担当者を割り当ててチケットを対応中にする
// 割り当て先は support_agent または admin でなければならない
func (s *TicketService) AssignAgent(ctx context.Context, ticketID, agentID string) (*ticket.Ticket, error) {
	agent, err := s.userRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.IsAgent() {
		return nil, ticket.ErrAssigneeNotAgent
	}

	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := t.Assign(agentID); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTicketStatus はチケットのステータスを遷移させる
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID string, status ticket.Status) (*ticket.Ticket, error) {
	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := t.Transition(status); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
