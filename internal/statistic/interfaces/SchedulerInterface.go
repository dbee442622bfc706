package interfaces

import "context"

type SchedulerInterface interface {
	Init(ctx context.Context, rebuild func(ctx context.Context) error)
	Stop()
	Persist() error
}
