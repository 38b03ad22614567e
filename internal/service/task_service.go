package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dfcarvalho/tarefas-api/internal/domain"
	"github.com/dfcarvalho/tarefas-api/internal/events"
	"github.com/dfcarvalho/tarefas-api/internal/platform/logger"
	"github.com/dfcarvalho/tarefas-api/internal/store"
)

// TaskRepository defines the repository interface for the service layer.
// It is aligned with store.TaskStore to ensure proper separation of concerns.
type TaskRepository interface {
	// Create saves a new task to the store and assigns its ID
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List retrieves all tasks ordered by ID
	List(ctx context.Context) ([]*domain.Task, error)

	// FindByStatus retrieves all tasks with the given status ordered by ID
	FindByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)

	// Update saves changes to an existing task
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new repository instance that uses the provided transaction
	// This is used for transactional operations
	WithTx(tx *sql.Tx) TaskRepository

	// DB returns the underlying database connection, or nil for backends
	// without one (e.g. the in-memory store)
	DB() *sql.DB
}

// ListTasksOptions narrows the result set of ListTasks.
type ListTasksOptions struct {
	// Status, when set, restricts the listing to tasks with that status.
	Status *domain.TaskStatus
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description string

	// Status is optional; when empty the task starts as "aberto".
	Status domain.TaskStatus
}

// TaskService provides task-related operations
type TaskService interface {
	// ListTasks retrieves tasks, optionally filtered by status
	ListTasks(ctx context.Context, opts ListTasksOptions) ([]*domain.Task, error)

	// GetTask retrieves a task by its ID
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// CreateTask creates and persists a new task
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// UpdateTask applies a partial update to an existing task and returns the result
	UpdateTask(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task by its ID
	DeleteTask(ctx context.Context, id int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskRepo     TaskRepository
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskRepo TaskRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	// Validate dependencies
	if taskRepo == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskRepo cannot be nil",
			Err:       nil,
		}
	}
	if eventEmitter == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
			Err:       nil,
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskRepo:     taskRepo,
		eventEmitter: eventEmitter,
		logger:       logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks.
// When opts.Status is set only tasks with that status are returned.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	opts ListTasksOptions,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		tasks []*domain.Task
		err   error
	)
	if opts.Status != nil {
		log.Debug("listing tasks by status", slog.String("status", string(*opts.Status)))
		tasks, err = s.taskRepo.FindByStatus(ctx, *opts.Status)
	} else {
		log.Debug("listing all tasks")
		tasks, err = s.taskRepo.List(ctx)
	}
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	log.Debug("listed tasks successfully", slog.Int("task_count", len(tasks)))
	return tasks, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		log.Debug("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))

		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}

	log.Debug("retrieved task successfully",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)))
	return task, nil
}

// CreateTask implements TaskService.CreateTask.
// It validates the input, persists the new task and emits a task.created event.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(input.Title, input.Description, input.Status)
	if err != nil {
		log.Warn("rejected invalid task data",
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "invalid task data", err)
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		log.Error("failed to save task",
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)))

	s.emitTaskEvent(ctx, events.TaskCreated, task.ID, task)

	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
// The read-modify-write cycle runs inside a database transaction when the
// backing repository has one, so concurrent updates cannot interleave.
// On success the updated task is returned and a task.updated event is emitted.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id int64,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	apply := func(ctx context.Context, repo TaskRepository) error {
		task, err := repo.GetByID(ctx, id)
		if err != nil {
			log.Debug("failed to retrieve task for update",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))

			if errors.Is(err, store.ErrTaskNotFound) {
				return ErrTaskNotFound
			}
			return NewTaskServiceError("update_task", "failed to retrieve task", err)
		}

		if err := task.ApplyUpdate(update); err != nil {
			log.Warn("rejected invalid task update",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("update_task", "invalid task update", err)
		}

		if err := repo.Update(ctx, task); err != nil {
			log.Error("failed to save updated task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))

			if errors.Is(err, store.ErrTaskNotFound) {
				return ErrTaskNotFound
			}
			return NewTaskServiceError("update_task", "failed to save task", err)
		}

		updated = task
		return nil
	}

	var err error
	if db := s.taskRepo.DB(); db != nil {
		err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return apply(ctx, s.taskRepo.WithTx(tx))
		})
	} else {
		err = apply(ctx, s.taskRepo)
	}
	if err != nil {
		return nil, err
	}

	log.Info("task updated successfully",
		slog.Int64("task_id", updated.ID),
		slog.String("status", string(updated.Status)))

	s.emitTaskEvent(ctx, events.TaskUpdated, updated.ID, updated)

	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask.
// Deleting an unknown ID is an error, not a no-op, so clients learn when
// they hold a stale reference. Emits a task.deleted event on success.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		log.Debug("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))

		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))

	payload := struct {
		ID int64 `json:"id"`
	}{
		ID: id,
	}
	s.emitTaskEvent(ctx, events.TaskDeleted, id, payload)

	return nil
}

// emitTaskEvent publishes a task lifecycle event to the configured emitter.
// Emission failures are logged but never surfaced: the mutation already
// succeeded and the caller must see it as such.
func (s *taskServiceImpl) emitTaskEvent(
	ctx context.Context,
	eventType string,
	taskID int64,
	payload interface{},
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, payload)
	if err != nil {
		log.Error("failed to create task event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.Int64("task_id", taskID))
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit task event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.Int64("task_id", taskID))
		return
	}

	log.Debug("task event emitted",
		slog.String("event_type", eventType),
		slog.String("event_id", event.ID.String()),
		slog.Int64("task_id", taskID))
}
