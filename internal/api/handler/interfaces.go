package handler

import (
	"context"

	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/location"
	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
	"github.com/calchukom/caldepaz-sub001/internal/domain/ticket"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
)

// AuthServiceInterface は認証サービスのインターフェース
type AuthServiceInterface interface {
	Register(ctx context.Context, input application.RegisterInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, *application.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*application.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	IssueInvite(ctx context.Context, role user.Role) (string, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*user.User, error)
	UpdateProfile(ctx context.Context, input application.UpdateProfileInput) (*user.User, error)
}

// VehicleServiceInterface は車両サービスのインターフェース
type VehicleServiceInterface interface {
	CreateVehicle(ctx context.Context, input application.CreateVehicleInput) (*vehicle.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error)
	ListVehicles(ctx context.Context, filter vehicle.ListFilter) ([]*vehicle.Vehicle, error)
	UpdateVehicle(ctx context.Context, input application.UpdateVehicleInput) (*vehicle.Vehicle, error)
	SetManualStatus(ctx context.Context, id string, status vehicle.Status) (*vehicle.Vehicle, error)
	AvailableCount(ctx context.Context, locationID string) (int, error)
	CreateSpecification(ctx context.Context, input application.CreateSpecificationInput) (*vehicle.Specification, error)
	GetSpecification(ctx context.Context, id string) (*vehicle.Specification, error)
	ListSpecifications(ctx context.Context, limit, offset int) ([]*vehicle.Specification, error)
}

// LocationServiceInterface は拠点サービスのインターフェース
type LocationServiceInterface interface {
	CreateLocation(ctx context.Context, input application.CreateLocationInput) (*location.Location, error)
	GetLocation(ctx context.Context, id string) (*location.Location, error)
	ListLocations(ctx context.Context, limit, offset int) ([]*location.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error)
	ActivateBooking(ctx context.Context, id string) (*booking.Booking, error)
	CompleteBooking(ctx context.Context, id string) (*booking.Booking, error)
	CancelBooking(ctx context.Context, input application.CancelBookingInput) (*booking.Booking, error)
}

// PaymentServiceInterface は支払いサービスのインターフェース
type PaymentServiceInterface interface {
	CreatePayment(ctx context.Context, input application.CreatePaymentInput) (*payment.Payment, error)
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	GetBookingPayments(ctx context.Context, bookingID string) ([]*payment.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status payment.Status, failureReason string) (*payment.Payment, error)
	OutstandingBalance(ctx context.Context, bookingID string) (float64, error)
}

// TicketServiceInterface はサポートチケットサービスのインターフェース
type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, input application.CreateTicketInput) (*ticket.Ticket, error)
	GetTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	ListTickets(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, error)
	AssignAgent(ctx context.Context, ticketID, agentID string) (*ticket.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketID string, status ticket.Status) (*ticket.Ticket, error)
}

// MaintenanceServiceInterface は整備サービスのインターフェース
type MaintenanceServiceInterface interface {
	ScheduleMaintenance(ctx context.Context, input application.ScheduleMaintenanceInput) (*maintenance.Record, error)
	GetRecord(ctx context.Context, id string) (*maintenance.Record, error)
	GetVehicleRecords(ctx context.Context, vehicleID string, limit, offset int) ([]*maintenance.Record, error)
	StartMaintenance(ctx context.Context, id string) (*maintenance.Record, error)
	CompleteMaintenance(ctx context.Context, id string) (*maintenance.Record, error)
	CancelMaintenance(ctx context.Context, id string) (*maintenance.Record, error)
}
