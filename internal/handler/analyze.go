package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/symvora/internal/auth"
	"github.com/sakif/symvora/internal/service"
)

// AnalyzeHandler forwards symptom descriptions to the diagnosis model.
type AnalyzeHandler struct {
	diagnosis *service.DiagnosisService
	logger    *slog.Logger
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(diagnosis *service.DiagnosisService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{diagnosis: diagnosis, logger: logger}
}

type analyzeRequest struct {
	Symptoms string `json:"symptoms"`
}

// AnalyzeResponse carries the model's advice.
type AnalyzeResponse struct {
	Result string `json:"result"`
}

// HandleAnalyze returns advice for a symptom description.
//
// HTTP: POST /api/analyze (RequireAuth)
// BODY: {"symptoms": "headache and mild fever"}
// 200 {"result": "..."}; 400 for blank symptoms; 502 when the model fails.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	advice, err := h.diagnosis.Analyze(r.Context(), userID, req.Symptoms)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{Result: advice})
}
