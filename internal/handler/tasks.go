package handler

import (
	"errors"
	"net/http"

	"github.com/dorianvale/praxis/internal/reconcile"
)

// TasksHandler serves scheduler-triggered maintenance endpoints. Routes using
// it must sit behind the task-token middleware, not user auth.
type TasksHandler struct {
	reconciler *reconcile.Reconciler
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(reconciler *reconcile.Reconciler) *TasksHandler {
	return &TasksHandler{reconciler: reconciler}
}

// ReconcileOverdue handles POST /api/tasks/reconcile-overdue. It runs one
// overdue invoice pass synchronously and reports the summary.
func (h *TasksHandler) ReconcileOverdue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reconciler.Run(r.Context())
	if err != nil {
		if errors.Is(err, reconcile.ErrAlreadyRunning) {
			// Busy is a distinct outcome, not a failure: no work was lost.
			respondJSON(w, http.StatusConflict, map[string]string{
				"message": "An overdue invoice run is already in progress.",
			})
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
