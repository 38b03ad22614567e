package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dfcarvalho/tarefas-api/internal/domain"
	"github.com/dfcarvalho/tarefas-api/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// getPathTaskID extracts the integer task ID from the URL path parameters.
//
// Returns:
//   - (id, nil): The parsed ID if the parameter is a valid integer
//   - (0, error): A validation error if the parameter is missing or not an integer
func getPathTaskID(r *http.Request) (int64, error) {
	// Extract parameter from URL path using chi router
	pathParam := chi.URLParam(r, "id")
	if pathParam == "" {
		return 0, domain.NewValidationError("id", "is required", domain.ErrValidation)
	}

	// Task IDs are integers; anything else is rejected before the store
	// ever sees it.
	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("id", "must be an integer", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePathTaskID extracts the task ID from the path and writes an error
// response when the parameter is missing or malformed.
//
// Returns:
//   - (id, true): The parsed ID when extraction succeeded
//   - (0, false): Zero and false when extraction failed and a response was written
func handlePathTaskID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	// Get logger from context if not provided
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	id, err := getPathTaskID(r)
	if err != nil {
		log.Warn("invalid task id in path",
			slog.String("value", chi.URLParam(r, "id")))
		HandleAPIError(w, r, err, "")
		return 0, false
	}

	return id, true
}
