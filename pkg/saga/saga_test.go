package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaga_AllStepsSucceed 全部步骤成功时不触发补偿
func TestSaga_AllStepsSucceed(t *testing.T) {
	var executed []string

	s := New(5 * time.Second)
	s.AddStep("步骤A",
		func(ctx context.Context) error { executed = append(executed, "A"); return nil },
		func(ctx context.Context) error { executed = append(executed, "undo-A"); return nil },
	)
	s.AddStep("步骤B",
		func(ctx context.Context) error { executed = append(executed, "B"); return nil },
		func(ctx context.Context) error { executed = append(executed, "undo-B"); return nil },
	)

	err := s.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, executed, "只应执行正向操作")
}

// TestSaga_FailureTriggersReverseCompensation 中途失败按逆序补偿
func TestSaga_FailureTriggersReverseCompensation(t *testing.T) {
	var executed []string
	bizErr := errors.New("库存不足")

	s := New(5 * time.Second)
	s.AddStep("预留图书1",
		func(ctx context.Context) error { executed = append(executed, "reserve-1"); return nil },
		func(ctx context.Context) error { executed = append(executed, "release-1"); return nil },
	)
	s.AddStep("预留图书2",
		func(ctx context.Context) error { executed = append(executed, "reserve-2"); return nil },
		func(ctx context.Context) error { executed = append(executed, "release-2"); return nil },
	)
	s.AddStep("预留图书3",
		func(ctx context.Context) error { return bizErr },
		func(ctx context.Context) error { executed = append(executed, "release-3"); return nil },
	)

	err := s.Execute(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, bizErr), "应能Unwrap出原始业务错误")

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 2, stepErr.Index)
	assert.Equal(t, "预留图书3", stepErr.Step)

	// 失败步骤自身未进入executed，补偿只覆盖前两步，且为逆序
	assert.Equal(t, []string{"reserve-1", "reserve-2", "release-2", "release-1"}, executed)
}

// TestSaga_CompensationErrorDoesNotStopOthers 某个补偿失败不阻断剩余补偿
func TestSaga_CompensationErrorDoesNotStopOthers(t *testing.T) {
	var released []string
	var reported []string

	s := New(5 * time.Second)
	s.OnCompensationError(func(step string, err error) {
		reported = append(reported, step)
	})
	s.AddStep("步骤1",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { released = append(released, "1"); return nil },
	)
	s.AddStep("步骤2",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return errors.New("补偿失败") },
	)
	s.AddStep("步骤3",
		func(ctx context.Context) error { return errors.New("boom") },
		nil,
	)

	err := s.Execute(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"1"}, released, "步骤2补偿失败后仍应补偿步骤1")
	assert.Equal(t, []string{"步骤2"}, reported, "补偿失败应通过回调上报")
}

// TestSaga_Timeout 整体超时触发补偿
func TestSaga_Timeout(t *testing.T) {
	var released bool

	s := New(30 * time.Millisecond)
	s.AddStep("快步骤",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { released = true; return nil },
	)
	s.AddStep("慢步骤",
		func(ctx context.Context) error {
			select {
			case <-time.After(200 * time.Millisecond):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		nil,
	)
	s.AddStep("不应执行的步骤",
		func(ctx context.Context) error {
			t.Fatal("超时后不应继续执行后续步骤")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, released, "超时后应补偿已完成的步骤")
}

// TestSaga_NilActionAndCompensate Action/Compensate为nil时跳过
func TestSaga_NilActionAndCompensate(t *testing.T) {
	s := New(0)
	s.AddStep("空步骤", nil, nil)
	s.AddStep("正常步骤", func(ctx context.Context) error { return nil }, nil)

	assert.NoError(t, s.Execute(context.Background()))
}
