// Package saga 实现通用的补偿事务（Saga）框架
//
// Saga模式核心思想：
// 1. 将一个跨资源的长事务拆分为多个本地短事务（步骤）
// 2. 每个步骤有对应的补偿操作
// 3. 某步失败时，按逆序执行已完成步骤的补偿操作，整体表现为"全部成功或全部回滚"
//
// 本项目的典型用法：下单时逐行预留库存
//
//	s := saga.New(10 * time.Second)
//	for _, line := range lines {
//	    line := line
//	    s.AddStep(fmt.Sprintf("预留库存 book=%d", line.BookID),
//	        func(ctx context.Context) error { return ledger.Reserve(ctx, line.BookID, line.Quantity, orderNo) },
//	        func(ctx context.Context) error { return ledger.Release(ctx, line.BookID, line.Quantity, orderNo, "下单失败回滚") },
//	    )
//	}
//	s.AddStep("落库订单", persistOrder, nil) // 最后一步失败会触发前面所有库存释放
//	err := s.Execute(ctx)
//
// 教学要点：
// - 补偿操作必须幂等（网络故障可能导致重试）
// - 补偿只依赖自己步骤的Action结果，不依赖后续步骤
// - Saga保证最终一致性，而非强一致性
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Step 表示Saga中的一个步骤
// Action是正向操作（如预留库存），Compensate是补偿操作（如释放库存）
// 两者都可以为nil（最后一步通常无需补偿）
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 表示一次补偿事务
type Saga struct {
	steps    []Step
	executed []Step        // 已执行的步骤（逆序补偿用）
	timeout  time.Duration // 整体超时，防止长时间阻塞

	// onCompensationError 补偿失败回调（记日志/告警/写死信）
	// 补偿失败不会中断剩余补偿（尽最大努力）
	onCompensationError func(step string, err error)
}

// New 创建一个新的Saga事务
// timeout <= 0 表示不设整体超时
func New(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 添加一个步骤
// 步骤顺序很重要：按添加顺序执行，按逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// OnCompensationError 设置补偿失败回调
func (s *Saga) OnCompensationError(fn func(step string, err error)) {
	s.onCompensationError = fn
}

// StepError 记录失败步骤的位置与名称，便于调用方定位是哪一行预留失败
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga步骤[%d:%s]执行失败: %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Execute 执行Saga事务
//
// 执行流程：
// 1. 按顺序执行每个步骤的Action
// 2. 某步失败（或整体超时）时，逆序补偿已完成的步骤
// 3. 返回触发补偿的那个步骤错误（StepError，Unwrap可拿到原始业务错误）
//
// 补偿使用独立的Context：触发补偿的往往正是超时/取消，
// 若继续沿用原ctx，补偿自身也会立即失败，库存就漏回收了。
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			s.compensate(context.Background())
			return &StepError{Index: i, Step: step.Name, Err: ctx.Err()}
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.Background())
				return &StepError{Index: i, Step: step.Name, Err: err}
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序补偿已完成的步骤
// 即使某个补偿失败，也继续执行剩余补偿（尽最大努力），失败通过回调上报
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			if s.onCompensationError != nil {
				s.onCompensationError(step.Name, err)
			}
		}
	}
	s.executed = nil
}

// IsStepError 判断错误是否来自某个Saga步骤
func IsStepError(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}
