package router

import (
	"net/http"

	"github.com/ecoready/backend/internal/middleware"
	"github.com/ecoready/backend/internal/notify"
	"github.com/ecoready/backend/internal/progress"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Options struct {
	AllowedOrigins []string
	// JWTSecret enables bearer-token auth on /api/v1 when non-empty.
	JWTSecret []byte
}

// New wires every route onto a gorilla/mux router wrapped in CORS and
// request logging.
func New(progressHandler *progress.Handler, notifyHandler *notify.Handler, log *zap.Logger, opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log.Named("http")))

	api := r.PathPrefix("/api/v1").Subrouter()
	if len(opts.JWTSecret) > 0 {
		api.Use(middleware.Auth(opts.JWTSecret))
	}

	// Quiz results & stats
	api.HandleFunc("/quiz-results", progressHandler.CompleteQuiz).Methods("POST")
	api.HandleFunc("/quiz-results", progressHandler.QuizHistory).Methods("GET")
	api.HandleFunc("/stats", progressHandler.GetStats).Methods("GET")
	api.HandleFunc("/progress", progressHandler.ClearProgress).Methods("DELETE")

	// Achievements
	api.HandleFunc("/achievements", progressHandler.ListAchievements).Methods("GET")
	api.HandleFunc("/achievements/earned", progressHandler.EarnedAchievements).Methods("GET")
	api.HandleFunc("/achievements/check", progressHandler.CheckAchievements).Methods("POST")
	api.HandleFunc("/achievements/progress", progressHandler.AchievementProgress).Methods("GET")

	// Notifications
	api.HandleFunc("/notifications/settings", notifyHandler.GetSettings).Methods("GET")
	api.HandleFunc("/notifications/settings", notifyHandler.SaveSettings).Methods("PUT")
	api.HandleFunc("/notifications/history", notifyHandler.GetHistory).Methods("GET")
	api.HandleFunc("/notifications/history", notifyHandler.ClearHistory).Methods("DELETE")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Tokens travel in the Authorization header, so no cookies are allowed
	// cross-origin.
	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	return c.Handler(r)
}
