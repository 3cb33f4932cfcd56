// Package handler exposes the underwriting pipeline over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"uwgate/internal/planner"
	"uwgate/internal/rules"
	"uwgate/internal/underwriting/models"
	id "uwgate/pkg/domain"
	dErrors "uwgate/pkg/domain-errors"
	"uwgate/pkg/platform/httputil"
	"uwgate/pkg/requestcontext"
)

// Service defines the interface for underwriting operations.
type Service interface {
	Process(ctx context.Context, app *models.CreditApplication) (*models.UnderwritingDecision, error)
	PlanPreview(ctx context.Context, active []rules.ReviewRule) (*planner.ExecutionPlan, error)
	Decision(ctx context.Context, appID id.ApplicationID) (*models.UnderwritingDecision, error)
	ListRules() []rules.ReviewRule
	Rule(name rules.ReviewRule) (rules.StructuredRule, error)
}

// Handler wires underwriting endpoints to the underwriting service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an underwriting handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts underwriting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/underwriting/evaluate", h.HandleEvaluate)
	r.Get("/underwriting/plan", h.HandlePlan)
	r.Get("/underwriting/decisions/{application_id}", h.HandleDecision)
	r.Get("/rules", h.HandleListRules)
	r.Get("/rules/{name}", h.HandleGetRule)
}

// HandleEvaluate handles POST /underwriting/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app := req.ToApplication()
	decision, err := h.service.Process(ctx, app)
	if err != nil {
		h.logger.ErrorContext(ctx, "application evaluation failed",
			"request_id", requestID,
			"application_id", app.ApplicationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application evaluated",
		"request_id", requestID,
		"application_id", app.ApplicationID,
		"decision", decision.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandlePlan handles GET /underwriting/plan requests. Rules arrive as a
// comma-separated "rules" query parameter.
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	raw := strings.TrimSpace(r.URL.Query().Get("rules"))
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation,
			"query parameter 'rules' is required"))
		return
	}
	active, err := parseRuleList(strings.Split(raw, ","))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	plan, err := h.service.PlanPreview(ctx, active)
	if err != nil {
		h.logger.WarnContext(ctx, "plan preview failed",
			"request_id", requestID,
			"rules", raw,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPlan(plan))
}

// HandleDecision handles GET /underwriting/decisions/{application_id}.
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	appID, err := id.ParseApplicationID(chi.URLParam(r, "application_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	decision, err := h.service.Decision(ctx, appID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "decision lookup failed",
				"request_id", requestID,
				"application_id", appID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandleListRules handles GET /rules.
func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromRuleList(h.service.ListRules()))
}

// HandleGetRule handles GET /rules/{name}.
func (h *Handler) HandleGetRule(w http.ResponseWriter, r *http.Request) {
	name, err := rules.ParseReviewRule(chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rule, err := h.service.Rule(name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}
