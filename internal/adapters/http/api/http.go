// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitSolve records a first solve and returns the refreshed profile.
	SubmitSolve(ctx context.Context, playerID, challengeID string, durationSeconds int) (types.SolveStatus, types.PlayerProfile, error)

	// Read operations expose derived progression data.
	GetProfile(ctx context.Context, playerID string) (types.PlayerProfile, error)
	GetLeaderboardPage(ctx context.Context, offset, limit int) ([]types.LeaderboardEntry, error)
	GetRecommendations(ctx context.Context, playerID string, k int) ([]types.Recommendation, error)

	// Catalog administration.
	RefreshCatalog(ctx context.Context, metas []model.ChallengeMeta) error
	CatalogDegraded() bool

	MaxLeaderboardLimit() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	solvesHandler          *SolvesHandler
	profileHandler         *ProfileHandler
	leaderboardHandler     *LeaderboardHandler
	recommendationsHandler *RecommendationsHandler
	catalogHandler         *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(deps),
		statsHandler:           NewStatsHandler(statsProvider),
		solvesHandler:          NewSolvesHandler(deps),
		profileHandler:         NewProfileHandler(deps),
		leaderboardHandler:     NewLeaderboardHandler(deps, deps.MaxLeaderboardLimit()),
		recommendationsHandler: NewRecommendationsHandler(deps),
		catalogHandler:         NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. When auth is non-nil the
// solve endpoint additionally verifies bearer identity.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, auth *Authenticator) {
	solves := s.solvesHandler.HandlePostSolve
	if auth != nil {
		solves = auth.Middleware(solves)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/solves", MetricsMiddleware(solves, "solves"))
	mux.HandleFunc("/profile/", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("/catalog", MetricsMiddleware(s.catalogHandler.HandlePutCatalog, "catalog"))
}

// solveRequest mirrors the wire schema for POST /solves.
type solveRequest struct {
	PlayerID        string `json:"player_id"`
	ChallengeID     string `json:"challenge_id"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (s solveRequest) validate() error {
	switch {
	case strings.TrimSpace(s.PlayerID) == "":
		return NewKind("api.post_solve", ErrBadRequest)
	case strings.TrimSpace(s.ChallengeID) == "":
		return NewKind("api.post_solve", ErrBadRequest)
	case s.DurationSeconds < 0:
		return NewKind("api.post_solve", ErrBadRequest)
	}
	return nil
}

// solveResponse acknowledges a solve submission with the refreshed profile.
type solveResponse struct {
	Status  types.SolveStatus   `json:"status"`
	Profile types.PlayerProfile `json:"profile"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// pathParam extracts the single path segment after prefix, or "" when the
// path has a different shape.
func pathParam(path, prefix string) string {
	param := strings.TrimPrefix(path, prefix)
	if param == "" || strings.Contains(param, "/") {
		return ""
	}
	return param
}
