package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dfcarvalho/tarefas-api/internal/domain"
	"github.com/dfcarvalho/tarefas-api/internal/events"
	"github.com/dfcarvalho/tarefas-api/internal/platform/memory"
	"github.com/dfcarvalho/tarefas-api/internal/service"
	"github.com/dfcarvalho/tarefas-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func statusPtr(s domain.TaskStatus) *domain.TaskStatus {
	return &s
}

// stubTaskRepository delegates to a real store and can be configured to fail
// at specific points.
type stubTaskRepository struct {
	store store.TaskStore

	failCreate error
	failGet    error
	failList   error
	failFind   error
	failUpdate error
	failDelete error
}

func (r *stubTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	return r.store.Create(ctx, task)
}

func (r *stubTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	return r.store.GetByID(ctx, id)
}

func (r *stubTaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	return r.store.List(ctx)
}

func (r *stubTaskRepository) FindByStatus(
	ctx context.Context,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	if r.failFind != nil {
		return nil, r.failFind
	}
	return r.store.FindByStatus(ctx, status)
}

func (r *stubTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	return r.store.Update(ctx, task)
}

func (r *stubTaskRepository) Delete(ctx context.Context, id int64) error {
	if r.failDelete != nil {
		return r.failDelete
	}
	return r.store.Delete(ctx, id)
}

func (r *stubTaskRepository) WithTx(tx *sql.Tx) service.TaskRepository {
	return r
}

func (r *stubTaskRepository) DB() *sql.DB {
	return nil
}

// captureEmitter records emitted events and can be configured to fail.
type captureEmitter struct {
	mu     sync.Mutex
	events []*events.TaskEvent
	err    error
}

func (e *captureEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	if e.err != nil {
		return e.err
	}
	return nil
}

func (e *captureEmitter) Events() []*events.TaskEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*events.TaskEvent, len(e.events))
	copy(out, e.events)
	return out
}

// newTestService wires a TaskService to a fresh in-memory store through the
// repository adapter, the same way cmd/server does without a database.
func newTestService(t *testing.T) (service.TaskService, *captureEmitter) {
	t.Helper()

	repo := service.NewTaskRepositoryAdapter(memory.NewMemoryTaskStore(nil), nil)
	emitter := &captureEmitter{}
	svc, err := service.NewTaskService(repo, emitter, nil)
	require.NoError(t, err)
	return svc, emitter
}

func mustCreateTask(
	t *testing.T,
	svc service.TaskService,
	title, description string,
	status domain.TaskStatus,
) *domain.Task {
	t.Helper()

	task, err := svc.CreateTask(context.Background(), service.CreateTaskInput{
		Title:       title,
		Description: description,
		Status:      status,
	})
	require.NoError(t, err)
	return task
}

func TestNewTaskService(t *testing.T) {
	t.Parallel()

	repo := service.NewTaskRepositoryAdapter(memory.NewMemoryTaskStore(nil), nil)
	emitter := &captureEmitter{}

	t.Run("nil repository", func(t *testing.T) {
		svc, err := service.NewTaskService(nil, emitter, nil)
		assert.Nil(t, svc)
		require.Error(t, err)

		var svcErr *service.TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create_service", svcErr.Operation)
	})

	t.Run("nil emitter", func(t *testing.T) {
		svc, err := service.NewTaskService(repo, nil, nil)
		assert.Nil(t, svc)
		assert.Error(t, err)
	})

	t.Run("nil logger uses default", func(t *testing.T) {
		svc, err := service.NewTaskService(repo, emitter, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assigns id and defaults status", func(t *testing.T) {
		svc, emitter := newTestService(t)

		task, err := svc.CreateTask(ctx, service.CreateTaskInput{
			Title:       "Estudar Go",
			Description: "Ler a documentação do pacote context",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), task.ID)
		assert.Equal(t, domain.TaskStatusAberto, task.Status)
		assert.True(t, task.CreatedAt.Equal(task.UpdatedAt))

		emitted := emitter.Events()
		require.Len(t, emitted, 1)
		assert.Equal(t, events.TaskCreated, emitted[0].Type)

		var payload domain.Task
		require.NoError(t, emitted[0].UnmarshalPayload(&payload))
		assert.Equal(t, task.ID, payload.ID)
		assert.Equal(t, task.Title, payload.Title)
	})

	t.Run("honors explicit status", func(t *testing.T) {
		svc, _ := newTestService(t)

		task := mustCreateTask(t, svc, "Revisar PR", "Passar nos comentários abertos", domain.TaskStatusFazendo)
		assert.Equal(t, domain.TaskStatusFazendo, task.Status)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, emitter := newTestService(t)

		task, err := svc.CreateTask(ctx, service.CreateTaskInput{
			Title:       "",
			Description: "sem título",
		})
		assert.Nil(t, task)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, emitter.Events())
	})

	t.Run("wraps store failures", func(t *testing.T) {
		repo := &stubTaskRepository{
			store:      memory.NewMemoryTaskStore(nil),
			failCreate: assert.AnError,
		}
		emitter := &captureEmitter{}
		svc, err := service.NewTaskService(repo, emitter, nil)
		require.NoError(t, err)

		task, err := svc.CreateTask(ctx, service.CreateTaskInput{
			Title:       "Estudar Go",
			Description: "Ler a documentação",
		})
		assert.Nil(t, task)
		require.Error(t, err)

		var svcErr *service.TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create_task", svcErr.Operation)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, emitter.Events())
	})
}

func TestTaskService_GetTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns stored task", func(t *testing.T) {
		svc, _ := newTestService(t)
		created := mustCreateTask(t, svc, "Estudar Go", "Ler a documentação", "")

		got, err := svc.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newTestService(t)

		got, err := svc.GetTask(ctx, 9999)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		svc, _ := newTestService(t)

		tasks, err := svc.ListTasks(ctx, service.ListTasksOptions{})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("returns tasks ordered by id", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateTask(t, svc, "Primeira", "descrição", "")
		mustCreateTask(t, svc, "Segunda", "descrição", domain.TaskStatusFazendo)
		mustCreateTask(t, svc, "Terceira", "descrição", domain.TaskStatusFinalizado)

		tasks, err := svc.ListTasks(ctx, service.ListTasksOptions{})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, int64(1), tasks[0].ID)
		assert.Equal(t, int64(2), tasks[1].ID)
		assert.Equal(t, int64(3), tasks[2].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateTask(t, svc, "Primeira", "descrição", "")
		mustCreateTask(t, svc, "Segunda", "descrição", domain.TaskStatusFazendo)
		mustCreateTask(t, svc, "Terceira", "descrição", domain.TaskStatusFazendo)

		tasks, err := svc.ListTasks(ctx, service.ListTasksOptions{
			Status: statusPtr(domain.TaskStatusFazendo),
		})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Segunda", tasks[0].Title)
		assert.Equal(t, "Terceira", tasks[1].Title)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		repo := &stubTaskRepository{
			store:    memory.NewMemoryTaskStore(nil),
			failList: assert.AnError,
		}
		svc, err := service.NewTaskService(repo, &captureEmitter{}, nil)
		require.NoError(t, err)

		tasks, err := svc.ListTasks(ctx, service.ListTasksOptions{})
		assert.Nil(t, tasks)
		require.Error(t, err)

		var svcErr *service.TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "list_tasks", svcErr.Operation)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies partial update", func(t *testing.T) {
		svc, emitter := newTestService(t)
		created := mustCreateTask(t, svc, "Estudar Go", "Ler a documentação", "")

		updated, err := svc.UpdateTask(ctx, created.ID, domain.TaskUpdate{
			Status: statusPtr(domain.TaskStatusFinalizado),
		})
		require.NoError(t, err)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.Description, updated.Description)
		assert.Equal(t, domain.TaskStatusFinalizado, updated.Status)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

		// The change must be visible on a fresh read.
		got, err := svc.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusFinalizado, got.Status)

		emitted := emitter.Events()
		require.Len(t, emitted, 2)
		assert.Equal(t, events.TaskUpdated, emitted[1].Type)
	})

	t.Run("applies full update", func(t *testing.T) {
		svc, _ := newTestService(t)
		created := mustCreateTask(t, svc, "Estudar Go", "Ler a documentação", "")

		updated, err := svc.UpdateTask(ctx, created.ID, domain.TaskUpdate{
			Title:       strPtr("Estudar Go a fundo"),
			Description: strPtr("Ler a especificação da linguagem"),
			Status:      statusPtr(domain.TaskStatusFazendo),
		})
		require.NoError(t, err)
		assert.Equal(t, "Estudar Go a fundo", updated.Title)
		assert.Equal(t, "Ler a especificação da linguagem", updated.Description)
		assert.Equal(t, domain.TaskStatusFazendo, updated.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, emitter := newTestService(t)

		updated, err := svc.UpdateTask(ctx, 9999, domain.TaskUpdate{
			Status: statusPtr(domain.TaskStatusFinalizado),
		})
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.Empty(t, emitter.Events())
	})

	t.Run("rejects invalid update and keeps stored task intact", func(t *testing.T) {
		svc, _ := newTestService(t)
		created := mustCreateTask(t, svc, "Estudar Go", "Ler a documentação", "")

		updated, err := svc.UpdateTask(ctx, created.ID, domain.TaskUpdate{
			Title: strPtr(""),
		})
		assert.Nil(t, updated)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)

		got, err := svc.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Estudar Go", got.Title)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		repo := &stubTaskRepository{store: memory.NewMemoryTaskStore(nil)}
		emitter := &captureEmitter{}
		svc, err := service.NewTaskService(repo, emitter, nil)
		require.NoError(t, err)
		mustCreateTask(t, svc, "Estudar Go", "Ler a documentação", "")

		repo.failUpdate = assert.AnError
		updated, err := svc.UpdateTask(ctx, 1, domain.TaskUpdate{
			Status: statusPtr(domain.TaskStatusFazendo),
		})
		assert.Nil(t, updated)
		require.Error(t, err)

		var svcErr *service.TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "update_task", svcErr.Operation)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes stored task", func(t *testing.T) {
		svc, emitter := newTestService(t)
		created := mustCreateTask(t, svc, "Estudar Go", "Ler a documentação", "")

		require.NoError(t, svc.DeleteTask(ctx, created.ID))

		_, err := svc.GetTask(ctx, created.ID)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)

		emitted := emitter.Events()
		require.Len(t, emitted, 2)
		assert.Equal(t, events.TaskDeleted, emitted[1].Type)

		var payload struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, emitted[1].UnmarshalPayload(&payload))
		assert.Equal(t, created.ID, payload.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, emitter := newTestService(t)

		err := svc.DeleteTask(ctx, 9999)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.Empty(t, emitter.Events())
	})
}

func TestTaskService_EmitterFailureNotSurfaced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := service.NewTaskRepositoryAdapter(memory.NewMemoryTaskStore(nil), nil)
	emitter := &captureEmitter{err: assert.AnError}
	svc, err := service.NewTaskService(repo, emitter, nil)
	require.NoError(t, err)

	// A broken event pipeline must not fail the mutation itself.
	task, err := svc.CreateTask(ctx, service.CreateTaskInput{
		Title:       "Estudar Go",
		Description: "Ler a documentação",
	})
	require.NoError(t, err)

	got, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

// TestTaskService_Lifecycle walks a task through the full create, update,
// delete cycle and checks the state transitions along the way.
func TestTaskService_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, emitter := newTestService(t)

	created, err := svc.CreateTask(ctx, service.CreateTaskInput{
		Title:       "Estudar NestJS",
		Description: "Aprender sobre documentação",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusAberto, created.Status)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	// Keep the update measurably later than the creation.
	time.Sleep(5 * time.Millisecond)

	updated, err := svc.UpdateTask(ctx, created.ID, domain.TaskUpdate{
		Status: statusPtr(domain.TaskStatusFinalizado),
	})
	require.NoError(t, err)
	assert.Equal(t, "Estudar NestJS", updated.Title)
	assert.Equal(t, "Aprender sobre documentação", updated.Description)
	assert.Equal(t, domain.TaskStatusFinalizado, updated.Status)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))

	require.NoError(t, svc.DeleteTask(ctx, created.ID))

	_, err = svc.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	err = svc.DeleteTask(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	types := make([]string, 0, 3)
	for _, event := range emitter.Events() {
		types = append(types, event.Type)
	}
	assert.Equal(t, []string{events.TaskCreated, events.TaskUpdated, events.TaskDeleted}, types)
}
