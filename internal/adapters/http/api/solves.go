// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mightbeian/HacMan/internal/catalog"
	"github.com/mightbeian/HacMan/internal/domain/ledger"
	"github.com/mightbeian/HacMan/internal/domain/types"
)

// SolveDependencies defines the interface for solve submission dependencies.
type SolveDependencies interface {
	SubmitSolve(ctx context.Context, playerID, challengeID string, durationSeconds int) (types.SolveStatus, types.PlayerProfile, error)
}

// SolvesHandler handles solve submissions.
type SolvesHandler struct {
	deps SolveDependencies
}

// NewSolvesHandler creates a new solves handler.
func NewSolvesHandler(deps SolveDependencies) *SolvesHandler {
	return &SolvesHandler{deps: deps}
}

// HandlePostSolve handles POST /solves requests.
//
// A genuine first solve returns 201 with the refreshed profile. A
// resubmission for an already-solved challenge returns 200 with status
// "duplicate" and the unchanged profile; it is not an error.
func (h *SolvesHandler) HandlePostSolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_solve"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// When bearer identity is present the body must agree with it.
	if id, ok := IdentityFrom(r.Context()); ok {
		if req.PlayerID == "" {
			req.PlayerID = id
		} else if req.PlayerID != id {
			writeError(w, http.StatusForbidden, "forbidden", NewKind(op, ErrForbidden))
			return
		}
	}

	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	status, profile, err := h.deps.SubmitSolve(r.Context(), req.PlayerID, req.ChallengeID, req.DurationSeconds)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrUnknownChallenge):
			writeError(w, http.StatusNotFound, "unknown_challenge", err)
		case errors.Is(err, ledger.ErrValidation):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	code := http.StatusCreated
	if status == types.SolveDuplicate {
		code = http.StatusOK
	}
	writeJSON(w, code, solveResponse{Status: status, Profile: profile})
}
