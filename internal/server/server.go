// Package server exposes the search and plan engines over a JSON HTTP
// API. The server owns no state of its own: every request resolves the
// current snapshot once and runs against it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/t2a/ccam/internal/config"
	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/plan"
	"github.com/t2a/ccam/internal/snapshot"
)

// ReloadFunc loads a fresh snapshot; the server swaps it in atomically.
type ReloadFunc func(ctx context.Context) (*snapshot.Snapshot, *model.LoadSummary, error)

type Server struct {
	store  *snapshot.Store
	log    zerolog.Logger
	cfg    config.Config
	reload ReloadFunc
}

// New builds a Server over the store. reload may be nil, which disables
// the reload endpoint.
func New(store *snapshot.Store, log zerolog.Logger, cfg config.Config, reload ReloadFunc) *Server {
	return &Server{store: store, log: log, cfg: cfg, reload: reload}
}

// Router registers all routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/codes/{code}", s.handleCode)
		r.Get("/codes/{code}/associations", s.handleAssociations)
		r.Get("/check", s.handleCheck)
		r.Get("/plan/{code}", s.handlePlan)
		r.Get("/stats", s.handleStats)
		if s.reload != nil {
			r.Post("/reload", s.handleReload)
		}
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// snapshotFor resolves the snapshot for a request, honoring an optional
// ?version= pin. A pinned version that is no longer current is a 409:
// the caller should retry against the new snapshot.
func (s *Server) snapshotFor(w http.ResponseWriter, r *http.Request) *snapshot.Snapshot {
	sn, err := s.store.At(r.URL.Query().Get("version"))
	switch {
	case errors.Is(err, snapshot.ErrDataVersionMismatch):
		writeError(w, http.StatusConflict, err.Error())
		return nil
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil
	}
	return sn
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sn, err := s.store.Current()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": sn.Version})
}

type searchResult struct {
	Code    string  `json:"code"`
	Label   string  `json:"label"`
	ICR     float64 `json:"icr"`
	Chapter string  `json:"chapter,omitempty"`
	Score   float64 `json:"score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sn := s.snapshotFor(w, r)
	if sn == nil {
		return
	}
	q := r.URL.Query().Get("q")
	limit := s.cfg.SearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	resp := sn.Search.Search(q, limit)
	results := make([]searchResult, len(resp.Results))
	for i, res := range resp.Results {
		results[i] = searchResult{
			Code:    res.Code.Code,
			Label:   res.Code.Label,
			ICR:     res.Code.ICR,
			Chapter: res.Code.ChapterTitle,
			Score:   res.Score,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"version": sn.Version,
		"stage":   resp.Stage.String(),
		"reason":  resp.Reason,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	sn := s.snapshotFor(w, r)
	if sn == nil {
		return
	}
	id := chi.URLParam(r, "code")
	code, ok := sn.Catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "code "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":             code.Code,
		"label":            code.Label,
		"description":      code.Description,
		"icr":              code.ICR,
		"retired":          code.Retired,
		"chapter":          code.Chapter,
		"chapter_title":    code.ChapterTitle,
		"subchapter":       code.Subchapter,
		"subchapter_title": code.SubchapterTitle,
	})
}

func (s *Server) handleAssociations(w http.ResponseWriter, r *http.Request) {
	sn := s.snapshotFor(w, r)
	if sn == nil {
		return
	}
	id := chi.URLParam(r, "code")
	if _, ok := sn.Catalog.Get(id); !ok {
		writeError(w, http.StatusNotFound, "code "+id+" not found")
		return
	}

	min := model.TierCrossRegion
	if raw := r.URL.Query().Get("min_tier"); raw != "" {
		t, ok := model.ParseTier(raw)
		if !ok || !t.Compatible() {
			writeError(w, http.StatusBadRequest, "min_tier must be one of cross_region, same_region, official, verified")
			return
		}
		min = t
	}

	type assoc struct {
		Code    string `json:"code"`
		Label   string `json:"label,omitempty"`
		Tier    string `json:"tier"`
		Support int    `json:"support,omitempty"`
	}
	var out []assoc
	for _, n := range sn.Graph.Neighbors(id, min) {
		a := assoc{Code: n.Code, Tier: n.Tier.String(), Support: n.Support}
		if c, ok := sn.Catalog.Get(n.Code); ok {
			a.Label = c.Label
		}
		out = append(out, a)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":         strings.ToUpper(id),
		"version":      sn.Version,
		"count":        len(out),
		"associations": out,
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	sn := s.snapshotFor(w, r)
	if sn == nil {
		return
	}
	raw := r.URL.Query().Get("codes")
	codes := splitCodes(raw)
	if len(codes) < 2 {
		writeError(w, http.StatusBadRequest, "at least 2 comma-separated codes required")
		return
	}
	issues := sn.Plans.Check(codes, s.cfg.SuggestUnknown)
	writeJSON(w, http.StatusOK, map[string]any{
		"codes":   codes,
		"version": sn.Version,
		"issues":  issues,
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	sn := s.snapshotFor(w, r)
	if sn == nil {
		return
	}
	id := chi.URLParam(r, "code")
	opts := plan.Options{
		Exclude: splitCodes(r.URL.Query().Get("exclude")),
		Force:   splitCodes(r.URL.Query().Get("force")),
	}
	p, err := sn.Plans.Build(id, opts)
	if err != nil {
		if errors.Is(err, plan.ErrInvalidPrincipal) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": sn.Version,
		"plan":    p,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sn, err := s.store.Current()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	st := sn.Search.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":       sn.Version,
		"loaded_at":     sn.LoadedAt,
		"codes":         sn.Catalog.Len(),
		"active_codes":  sn.Catalog.ActiveLen(),
		"edges":         sn.Graph.Edges(),
		"edges_by_tier": sn.Graph.Stats().EdgesByTier,
		"search_hits": map[string]int64{
			"conjunctive":   st.ConjunctiveHits.Load(),
			"disjunctive":   st.DisjunctiveHits.Load(),
			"substring":     st.SubstringHits.Load(),
			"empty_queries": st.EmptyQueries.Load(),
			"no_matches":    st.NoMatches.Load(),
		},
		"stale_skipped": sn.Plans.StaleSkipped(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sn, summary, err := s.reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.store.Swap(sn)
	s.log.Info().Str("version", sn.Version).Msg("snapshot reloaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"version": sn.Version,
		"codes":   summary.Codes,
	})
}

func splitCodes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
