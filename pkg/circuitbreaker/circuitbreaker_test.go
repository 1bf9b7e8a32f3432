package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// TestCircuitBreaker_ClosedState 关闭状态下请求正常通过
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	for i := 0; i < 10; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
	if counts := cb.Counts(); counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

// TestCircuitBreaker_TripsAfterConsecutiveFailures 连续失败触发熔断
func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("broker down") })
	}

	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 打开后请求快速失败，不执行业务函数
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrOpenState) {
		t.Errorf("期望ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断器打开时不应执行业务函数")
	}
}

// TestCircuitBreaker_HalfOpenRecovery 超时后半开探测，成功则关闭
func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("broker down") })
	}
	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 等待超时进入半开
	time.Sleep(80 * time.Millisecond)
	if cb.State() != StateHalfOpen {
		t.Fatalf("期望状态为HALF_OPEN，实际%s", cb.State())
	}

	// 探测成功，转回关闭
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开探测应放行: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenFailureReopens 半开探测失败立即回到打开
func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("broker down") })
	}
	time.Sleep(80 * time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("still down") })

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_StateChangeCallback 状态变化回调
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("fail") })
	}

	if len(transitions) != 1 || transitions[0] != "CLOSED->OPEN" {
		t.Errorf("期望记录CLOSED->OPEN转换，实际%v", transitions)
	}
}
