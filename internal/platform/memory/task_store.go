package memory

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"sync"

	"github.com/dfcarvalho/tarefas-api/internal/domain"
	"github.com/dfcarvalho/tarefas-api/internal/store"
)

// MemoryTaskStore implements the store.TaskStore interface with an
// in-process map. It backs unit tests and local development where no
// database is available. All operations are atomic under its lock.
type MemoryTaskStore struct {
	mu     sync.RWMutex
	tasks  map[int64]domain.Task
	nextID int64
	logger *slog.Logger
}

// NewMemoryTaskStore creates an empty in-memory task store.
// If logger is nil, a default logger will be used.
func NewMemoryTaskStore(logger *slog.Logger) *MemoryTaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryTaskStore{
		tasks:  make(map[int64]domain.Task),
		logger: logger.With(slog.String("component", "memory_task_store")),
	}
}

// Ensure MemoryTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MemoryTaskStore)(nil)

// Create implements store.TaskStore.Create
// It validates the task, assigns the next free ID and stores a copy.
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task.ID = s.nextID
	s.tasks[task.ID] = *task

	s.logger.Debug("task created", slog.Int64("task_id", task.ID))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *MemoryTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	// Return a copy so callers cannot mutate stored state
	return &task, nil
}

// List implements store.TaskStore.List
// It returns copies of all tasks ordered by ID.
func (s *MemoryTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		task := task
		tasks = append(tasks, &task)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// FindByStatus implements store.TaskStore.FindByStatus
// It returns copies of all tasks with the given status, ordered by ID.
func (s *MemoryTaskStore) FindByStatus(
	ctx context.Context,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0)
	for _, task := range s.tasks {
		if task.Status != status {
			continue
		}
		task := task
		tasks = append(tasks, &task)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}

	s.tasks[task.ID] = *task

	s.logger.Debug("task updated", slog.Int64("task_id", task.ID))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *MemoryTaskStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}

	delete(s.tasks, id)

	s.logger.Debug("task deleted", slog.Int64("task_id", id))
	return nil
}

// WithTx implements store.TaskStore.WithTx
// The memory store has no transactions; every operation is already atomic
// under its lock, so the same store is returned.
func (s *MemoryTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return s
}
