package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReturnCompleter はOverdueReturnCompleterのモック
type MockReturnCompleter struct {
	mock.Mock
}

func (m *MockReturnCompleter) CompleteOverdueActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockFleetResweeper はFleetResweeperのモック
type MockFleetResweeper struct {
	mock.Mock
}

func (m *MockFleetResweeper) ResyncAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestScheduler_StartStop(t *testing.T) {
	completer := new(MockReturnCompleter)
	resweeper := new(MockFleetResweeper)

	scheduler := NewScheduler(completer, resweeper)

	err := scheduler.Start(context.Background())
	require.NoError(t, err)

	// 自動完了とリスイープの2ジョブが登録される
	assert.Len(t, scheduler.cron.Entries(), 2)

	scheduler.Stop()
}

func TestScheduler_CompleteOverdueReturns(t *testing.T) {
	t.Run("返却超過予約を完了させる", func(t *testing.T) {
		completer := new(MockReturnCompleter)
		completer.On("CompleteOverdueActive", mock.Anything).Return(2, nil)

		scheduler := NewScheduler(completer, new(MockFleetResweeper))
		scheduler.completeOverdueReturns(context.Background())

		completer.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		completer := new(MockReturnCompleter)
		completer.On("CompleteOverdueActive", mock.Anything).Return(0, assert.AnError)

		scheduler := NewScheduler(completer, new(MockFleetResweeper))

		// パニックしないことを確認
		scheduler.completeOverdueReturns(context.Background())

		completer.AssertExpectations(t)
	})
}

func TestScheduler_ResweepFleet(t *testing.T) {
	t.Run("車両ステータスの不整合を修復する", func(t *testing.T) {
		resweeper := new(MockFleetResweeper)
		resweeper.On("ResyncAll", mock.Anything).Return(1, nil)

		scheduler := NewScheduler(new(MockReturnCompleter), resweeper)
		scheduler.resweepFleet(context.Background())

		resweeper.AssertExpectations(t)
	})

	t.Run("不整合がない場合も正常に動作する", func(t *testing.T) {
		resweeper := new(MockFleetResweeper)
		resweeper.On("ResyncAll", mock.Anything).Return(0, nil)

		scheduler := NewScheduler(new(MockReturnCompleter), resweeper)
		scheduler.resweepFleet(context.Background())

		resweeper.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		resweeper := new(MockFleetResweeper)
		resweeper.On("ResyncAll", mock.Anything).Return(0, assert.AnError)

		scheduler := NewScheduler(new(MockReturnCompleter), resweeper)

		// パニックしないことを確認
		scheduler.resweepFleet(context.Background())

		resweeper.AssertExpectations(t)
	})
}
