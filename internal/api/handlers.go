package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/generator/batch"
	"headline-generator/internal/models"
)

const maxBody = 1 << 20

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

func (s *Server) validate(w http.ResponseWriter, v validation.Validatable) bool {
	if err := v.Validate(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error(), Code: string(apperrors.ErrCodeEmptyInput)})
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, map[string]interface{}{"error": err.Error(), "errorCode": apperrors.CodeOf(err)})
	s.writeJSON(w, http.StatusInternalServerError, errResponse{Error: msg, Code: string(apperrors.CodeOf(err))})
}

func (s *Server) unavailable(w http.ResponseWriter, what string) {
	s.writeJSON(w, http.StatusServiceUnavailable, errorBody(what+" not configured"))
}

// ==========================
// Generation
// ==========================

type generateRequest struct {
	Count    int    `json:"count"`
	Category string `json:"category"`
	Enhance  bool   `json:"enhance"`
}

func (g generateRequest) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Count, validation.Min(1), validation.Max(1000)),
	)
}

type generateResponse struct {
	Success       bool              `json:"success"`
	Count         int               `json:"count"`
	Headlines     []models.Headline `json:"headlines"`
	ExecutionTime float64           `json:"execution_time"`
}

// Generate handles POST /generate. Headlines are persisted when a store is
// configured.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := generateRequest{Count: 1}
	if !s.decode(w, r, &req) || !s.validate(w, req) {
		return
	}

	ratio := 0.0
	if req.Enhance {
		ratio = s.deps.EnhanceRatio
	}

	headlines, err := s.deps.Generator.Generate(r.Context(), batch.Request{
		Count:        req.Count,
		Category:     req.Category,
		EnhanceRatio: ratio,
	})
	if err != nil {
		s.internalError(w, "generation failed", err)
		return
	}

	if s.deps.Store != nil {
		ids, err := s.deps.Store.SaveBatch(r.Context(), headlines)
		if err != nil {
			s.internalError(w, "saving headlines failed", apperrors.NewPersistenceError("save_batch", err))
			return
		}
		for i := range headlines {
			if i < len(ids) {
				headlines[i].ID = ids[i]
			}
		}
	}

	s.writeJSON(w, http.StatusOK, generateResponse{
		Success:       true,
		Count:         len(headlines),
		Headlines:     headlines,
		ExecutionTime: time.Since(start).Seconds(),
	})
}

// ==========================
// Headlines
// ==========================

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListHeadlines handles GET /headlines?q=&category=&from=&to=&limit=&skip=&sort=&desc=.
func (s *Server) ListHeadlines(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		s.unavailable(w, "headline store")
		return
	}

	q := r.URL.Query()
	filter := models.HeadlineFilter{Text: q.Get("q"), Category: q.Get("category")}

	var err error
	if filter.From, err = parseTime(q.Get("from")); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("from must be RFC3339"))
		return
	}
	if filter.To, err = parseTime(q.Get("to")); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("to must be RFC3339"))
		return
	}

	page := models.DefaultPage()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("skip")); err == nil && v >= 0 {
		page.Skip = v
	}
	if sort := q.Get("sort"); sort == models.SortByCategory || sort == models.SortByCreatedAt {
		page.SortBy = sort
	}
	if desc := q.Get("desc"); desc != "" {
		page.Descending, _ = strconv.ParseBool(desc)
	}

	headlines, err := s.deps.Store.Find(r.Context(), filter, page)
	if err != nil {
		s.internalError(w, "listing headlines failed", err)
		return
	}
	total, err := s.deps.Store.Count(r.Context(), filter)
	if err != nil {
		s.internalError(w, "counting headlines failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"headlines": headlines,
		"total":     total,
	})
}

type searchQuery struct {
	Query string
	Limit int
}

func (sq searchQuery) Validate() error {
	return validation.ValidateStruct(&sq,
		validation.Field(&sq.Query, validation.Required),
		validation.Field(&sq.Limit, validation.Min(1), validation.Max(100)),
	)
}

// SearchHeadlines handles GET /headlines/search?q=&limit=.
func (s *Server) SearchHeadlines(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		s.unavailable(w, "headline store")
		return
	}

	sq := searchQuery{Query: strings.TrimSpace(r.URL.Query().Get("q")), Limit: 20}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody("limit must be an integer"))
			return
		}
		sq.Limit = n
	}
	if !s.validate(w, sq) {
		return
	}

	headlines, err := s.deps.Store.SearchText(r.Context(), sq.Query, sq.Limit)
	if err != nil {
		s.internalError(w, "search failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"headlines": headlines,
		"count":     len(headlines),
	})
}

// DeleteHeadline handles DELETE /headlines/{id}.
func (s *Server) DeleteHeadline(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		s.unavailable(w, "headline store")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := s.deps.Store.Delete(r.Context(), id)
	if err != nil {
		s.internalError(w, "delete failed", err)
		return
	}
	if !deleted {
		s.writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Templates & Keywords
// ==========================

// ListTemplates handles GET /templates?category=.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	all := s.deps.Templates.All()
	if cat := r.URL.Query().Get("category"); cat != "" {
		filtered := make([]models.Template, 0, len(all))
		for _, t := range all {
			if t.Category == cat {
				filtered = append(filtered, t)
			}
		}
		all = filtered
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(all),
		"categories": s.deps.Templates.Categories(),
		"templates":  all,
	})
}

type keywordsRequest struct {
	Words []string `json:"words"`
}

func (k keywordsRequest) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.Words, validation.Required, validation.Each(validation.Required, models.KeywordRule)),
	)
}

// AddKeywords handles POST /keywords/{category}.
func (s *Server) AddKeywords(w http.ResponseWriter, r *http.Request) {
	if s.deps.Keywords == nil {
		s.unavailable(w, "keyword source")
		return
	}

	var req keywordsRequest
	if !s.decode(w, r, &req) || !s.validate(w, req) {
		return
	}

	category := chi.URLParam(r, "category")
	if err := s.deps.Keywords.AddKeywordsBatch(r.Context(), category, req.Words); err != nil {
		s.internalError(w, "adding keywords failed", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"category": category,
		"added":    len(req.Words),
	})
}

// ==========================
// Tasks & Worker
// ==========================

type taskRequest struct {
	Count        int     `json:"count"`
	Category     string  `json:"category"`
	EnhanceRatio float64 `json:"enhance_ratio"`
}

func (t taskRequest) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Count, validation.Min(0), validation.Max(1000000)),
		validation.Field(&t.EnhanceRatio, validation.Min(0.0), validation.Max(1.0)),
	)
}

// EnqueueTask handles POST /tasks.
func (s *Server) EnqueueTask(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queue == nil {
		s.unavailable(w, "task queue")
		return
	}

	var req taskRequest
	if !s.decode(w, r, &req) || !s.validate(w, req) {
		return
	}

	task := &models.Task{Count: req.Count, Category: req.Category, EnhanceRatio: req.EnhanceRatio}
	if err := s.deps.Queue.Enqueue(r.Context(), task); err != nil {
		s.internalError(w, "enqueue failed", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{"id": task.ID})
}

func (s *Server) workerTransition(w http.ResponseWriter, op func(WorkerControl) error) {
	if s.deps.Worker == nil {
		s.unavailable(w, "worker")
		return
	}
	if err := op(s.deps.Worker); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyRunning) || apperrors.Is(err, apperrors.ErrNotRunning) {
			s.writeJSON(w, http.StatusConflict, errResponse{Error: err.Error(), Code: string(apperrors.CodeOf(err))})
			return
		}
		s.internalError(w, "worker transition failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Worker.Status())
}

// StartWorker handles POST /worker/start.
func (s *Server) StartWorker(w http.ResponseWriter, r *http.Request) {
	s.workerTransition(w, WorkerControl.Start)
}

// StopWorker handles POST /worker/stop. It blocks for at most the worker's
// stop timeout.
func (s *Server) StopWorker(w http.ResponseWriter, r *http.Request) {
	s.workerTransition(w, WorkerControl.Stop)
}

// WorkerStatus handles GET /worker/status.
func (s *Server) WorkerStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Worker == nil {
		s.unavailable(w, "worker")
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Worker.Status())
}

// ==========================
// Health
// ==========================

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Ready runs every registered check with a shared two second budget.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	s.writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}
