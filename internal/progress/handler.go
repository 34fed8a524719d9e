package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/ecoready/backend/internal/middleware"
	"github.com/ecoready/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &Handler{service: service, validate: v, log: log.Named("progress_handler")}
}

// ── Quiz Results ────────────────────────────────────────

func (h *Handler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return
	}

	resp := h.service.CompleteQuiz(r.Context(), req)
	if !resp.Saved {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Failed to save quiz result"})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) QuizHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.QuizHistory(r.Context()))
}

// ── Stats & Achievements ────────────────────────────────

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.CalculateStats(r.Context()))
}

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetAllAchievements(r.Context()))
}

func (h *Handler) EarnedAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.EarnedAchievements(r.Context()))
}

func (h *Handler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked := h.service.CheckAndUnlock(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"unlocked": unlocked})
}

func (h *Handler) AchievementProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetAchievementProgress(r.Context()))
}

// ── Reset ───────────────────────────────────────────────

func (h *Handler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	if !h.service.ClearAll(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Failed to clear progress"})
		return
	}
	deviceID, _ := middleware.DeviceID(r.Context())
	h.log.Info("Progress cleared", zap.String("device_id", deviceID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ── Helpers ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "ltefield":
			msgs = append(msgs, fmt.Sprintf("%s must not exceed totalQuestions", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
