package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
)

// mockTx はtransaction.Txのモック
type mockTx struct {
	mock.Mock
}

func (m *mockTx) Commit() error {
	return m.Called().Error(0)
}

func (m *mockTx) Rollback() error {
	return m.Called().Error(0)
}

// mockTxManager はtransaction.Managerのモック
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// newMockTxManager はコミット・ロールバック可能なトランザクションを返すマネージャーを作る
func newMockTxManager() *mockTxManager {
	tx := new(mockTx)
	tx.On("Commit").Return(nil)
	tx.On("Rollback").Return(nil)
	tm := new(mockTxManager)
	tm.On("Begin", mock.Anything).Return(tx, nil)
	return tm
}

// mockBookingRepo はbooking.Repositoryのモック
type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	return m.Called(ctx, tx, b).Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *mockBookingRepo) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	return m.Called(ctx, tx, b).Error(0)
}

func (m *mockBookingRepo) CountOverlapping(ctx context.Context, tx transaction.Tx, vehicleID string, bookingDate, returnDate time.Time, excludeID string) (int, error) {
	args := m.Called(ctx, tx, vehicleID, bookingDate, returnDate, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *mockBookingRepo) GetBlockingByVehicle(ctx context.Context, vehicleID string) ([]*booking.Booking, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetOverduePending(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetOverdueActive(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *mockBookingRepo) ExistsByLocation(ctx context.Context, locationID string) (bool, error) {
	args := m.Called(ctx, locationID)
	return args.Bool(0), args.Error(1)
}

// mockVehicleRepo はvehicle.Repositoryのモック
type mockVehicleRepo struct {
	mock.Mock
}

func (m *mockVehicleRepo) Create(ctx context.Context, v *vehicle.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vehicle.Vehicle), args.Error(1)
}

func (m *mockVehicleRepo) List(ctx context.Context, filter vehicle.ListFilter) ([]*vehicle.Vehicle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vehicle.Vehicle), args.Error(1)
}

func (m *mockVehicleRepo) Update(ctx context.Context, v *vehicle.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVehicleRepo) UpdateStatus(ctx context.Context, tx transaction.Tx, id string, status vehicle.Status) error {
	return m.Called(ctx, tx, id, status).Error(0)
}

func (m *mockVehicleRepo) CountAvailableByLocation(ctx context.Context, locationID string) (int, error) {
	args := m.Called(ctx, locationID)
	return args.Int(0), args.Error(1)
}

// mockUserRepo はuser.Repositoryのモック
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

// mockPaymentRepo はpayment.Repositoryのモック
type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	return m.Called(ctx, tx, p).Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByBookingID(ctx context.Context, bookingID string) ([]*payment.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Update(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	return m.Called(ctx, tx, p).Error(0)
}

func (m *mockPaymentRepo) SumCompletedByBooking(ctx context.Context, tx transaction.Tx, bookingID string) (float64, error) {
	args := m.Called(ctx, tx, bookingID)
	return args.Get(0).(float64), args.Error(1)
}

// mockMaintenanceRepo はmaintenance.Repositoryのモック
type mockMaintenanceRepo struct {
	mock.Mock
}

func (m *mockMaintenanceRepo) Create(ctx context.Context, r *maintenance.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockMaintenanceRepo) GetByID(ctx context.Context, id string) (*maintenance.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.Record), args.Error(1)
}

func (m *mockMaintenanceRepo) GetByVehicleID(ctx context.Context, vehicleID string, limit, offset int) ([]*maintenance.Record, error) {
	args := m.Called(ctx, vehicleID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*maintenance.Record), args.Error(1)
}

func (m *mockMaintenanceRepo) GetBlockingByVehicle(ctx context.Context, vehicleID string) ([]*maintenance.Record, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*maintenance.Record), args.Error(1)
}

func (m *mockMaintenanceRepo) Update(ctx context.Context, r *maintenance.Record) error {
	return m.Called(ctx, r).Error(0)
}

// mockResyncer はVehicleStatusResyncerのモック
type mockResyncer struct {
	mock.Mock
}

func (m *mockResyncer) Resync(ctx context.Context, vehicleID string) (vehicle.Status, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(vehicle.Status), args.Error(1)
}

func (m *mockResyncer) ClearManualStatus(ctx context.Context, vehicleID string) (vehicle.Status, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(vehicle.Status), args.Error(1)
}
