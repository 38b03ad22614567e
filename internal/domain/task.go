package domain

import (
	"time"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusAberto     TaskStatus = "aberto"
	TaskStatusFazendo    TaskStatus = "fazendo"
	TaskStatusFinalizado TaskStatus = "finalizado"
)

// Valid reports whether the status is a member of the closed status set.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusAberto, TaskStatusFazendo, TaskStatusFinalizado:
		return true
	default:
		return false
	}
}

// Task represents a unit of work tracked by the service.
// The store assigns the numeric ID on creation and it never changes
// afterwards. Timestamps are UTC.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask creates a Task with the given title, description and status.
// An empty status defaults to aberto. The ID stays zero until a store
// persists the task; CreatedAt and UpdatedAt are set to the same instant.
// Returns ValidationErrors if any field fails validation.
func NewTask(title, description string, status TaskStatus) (*Task, error) {
	if status == "" {
		status = TaskStatusAberto
	}

	now := time.Now().UTC()
	task := &Task{
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// It returns ValidationErrors naming every offending field, or nil when
// the task is well formed.
func (t *Task) Validate() error {
	var errs ValidationErrors

	if t.Title == "" {
		errs = append(errs, NewValidationError("title", "cannot be empty", ErrValidation))
	}

	if t.Description == "" {
		errs = append(errs, NewValidationError("description", "cannot be empty", ErrValidation))
	}

	if !t.Status.Valid() {
		errs = append(errs, NewValidationError("status", "must be one of aberto, fazendo or finalizado", ErrValidation))
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// TaskUpdate describes a partial modification of a Task.
// Nil fields are left untouched by ApplyUpdate.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

// ApplyUpdate overwrites the fields present in the update, validating them
// with the same rules as creation, and refreshes UpdatedAt. Fields absent
// from the update keep their stored values. Returns ValidationErrors if
// any provided field is invalid; the task is left unmodified on error.
func (t *Task) ApplyUpdate(update TaskUpdate) error {
	var errs ValidationErrors

	if update.Title != nil && *update.Title == "" {
		errs = append(errs, NewValidationError("title", "cannot be empty", ErrValidation))
	}

	if update.Description != nil && *update.Description == "" {
		errs = append(errs, NewValidationError("description", "cannot be empty", ErrValidation))
	}

	if update.Status != nil && !update.Status.Valid() {
		errs = append(errs, NewValidationError("status", "must be one of aberto, fazendo or finalizado", ErrValidation))
	}

	if len(errs) > 0 {
		return errs
	}

	if update.Title != nil {
		t.Title = *update.Title
	}

	if update.Description != nil {
		t.Description = *update.Description
	}

	if update.Status != nil {
		t.Status = *update.Status
	}

	t.UpdatedAt = time.Now().UTC()
	return nil
}
