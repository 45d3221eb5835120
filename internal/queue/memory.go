package queue

import (
	"context"

	"github.com/nikolayk812/orderflow/internal/domain"
)

// Memory is a process-local task queue. Tasks are lost on restart; the
// reconciler's Resume pass re-enqueues whatever is still pending.
type Memory struct {
	tasks chan domain.ReconcileTask
}

func NewMemory(size int) *Memory {
	return &Memory{tasks: make(chan domain.ReconcileTask, size)}
}

func (m *Memory) Enqueue(ctx context.Context, task domain.ReconcileTask) error {
	select {
	case m.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Dequeue(ctx context.Context) (domain.ReconcileTask, error) {
	select {
	case task := <-m.tasks:
		return task, nil
	case <-ctx.Done():
		return domain.ReconcileTask{}, ctx.Err()
	}
}

func (m *Memory) Len() int {
	return len(m.tasks)
}
