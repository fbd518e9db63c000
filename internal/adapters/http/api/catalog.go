// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mightbeian/HacMan/internal/catalog"
	"github.com/mightbeian/HacMan/internal/domain/model"
)

// CatalogDependencies defines the interface for catalog administration.
type CatalogDependencies interface {
	RefreshCatalog(ctx context.Context, metas []model.ChallengeMeta) error
}

// CatalogHandler handles catalog push refreshes.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// catalogRequest mirrors the wire schema for PUT /catalog.
type catalogRequest struct {
	Challenges []challengeMeta `json:"challenges"`
}

type challengeMeta struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	BasePoints int    `json:"base_points"`
}

// HandlePutCatalog handles PUT /catalog requests, replacing the challenge
// snapshot. Solve history for challenges missing from the new snapshot is
// preserved; only categorization of those solves changes.
func (h *CatalogHandler) HandlePutCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_catalog"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	metas := make([]model.ChallengeMeta, 0, len(req.Challenges))
	for _, c := range req.Challenges {
		metas = append(metas, model.ChallengeMeta{
			ID:         c.ID,
			Title:      c.Title,
			Category:   model.Category(c.Category),
			Difficulty: model.Difficulty(c.Difficulty),
			BasePoints: c.BasePoints,
		})
	}

	if err := h.deps.RefreshCatalog(r.Context(), metas); err != nil {
		if errors.Is(err, catalog.ErrInvalidSnapshot) {
			writeError(w, http.StatusBadRequest, "invalid_snapshot", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"challenges": len(metas)})
}
