// CLAUDE:SUMMARY Core API struct and shared HTTP handlers — auth, registration, json helpers
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hazyhaar/lifeweave/internal/auth"
	"github.com/hazyhaar/lifeweave/internal/db"
	"github.com/hazyhaar/lifeweave/internal/interview"
)

// handleRe validates handle format: ASCII alphanumeric, underscore, hyphen only.
var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// maxBodySize is the maximum HTTP body size for answer submission.
const maxBodySize = 200 * 1024 // 200KB

// AnswerRateLimiter is the rate limiter for POST /api/interview/answer (30 req/60s).
var AnswerRateLimiter = NewRateLimiter(30, 60*time.Second)

// BiographySynthesizer turns a transcript into a biography text.
type BiographySynthesizer interface {
	Synthesize(ctx context.Context, transcript, style, language string) (string, error)
}

type API struct {
	db         *db.DB
	auth       *auth.Auth
	engine     *interview.Engine
	biographer BiographySynthesizer
}

func New(database *db.DB, a *auth.Auth, engine *interview.Engine, biographer BiographySynthesizer) *API {
	return &API{db: database, auth: a, engine: engine, biographer: biographer}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /api/register", a.handleRegister)
	mux.HandleFunc("POST /api/login", a.handleLogin)
	mux.HandleFunc("GET /api/me", a.handleGetMe)

	// Interview
	mux.HandleFunc("GET /api/interview/next", a.handleNextQuestion)
	mux.HandleFunc("POST /api/interview/answer", RateLimitMiddleware(AnswerRateLimiter, a.handleSubmitAnswer))
	mux.HandleFunc("GET /api/interview/progress", a.handleProgress)
	mux.HandleFunc("GET /api/interview/transcript", a.handleTranscript)
	mux.HandleFunc("POST /api/interview/reset", a.handleReset)

	// Biography
	mux.HandleFunc("POST /api/biography/generate", a.handleGenerateBiography)
	mux.HandleFunc("GET /api/biography/latest", a.handleLatestBiography)
	mux.HandleFunc("GET /api/biography/versions", a.handleBiographyVersions)
	mux.HandleFunc("GET /api/biography/{id}", a.handleGetBiography)
	mux.HandleFunc("PUT /api/biography/{id}", a.handleEditBiography)
	mux.HandleFunc("GET /api/biography/{id}/export", a.handleExportBiography)
	mux.HandleFunc("GET /api/export", a.handleExportInterview)
}

// --- Auth ---

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle   string `json:"handle"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Handle == "" || req.Password == "" {
		jsonError(w, "handle and password are required", http.StatusBadRequest)
		return
	}
	if len(req.Handle) < 3 || len(req.Handle) > 30 {
		jsonError(w, "handle must be 3-30 characters", http.StatusBadRequest)
		return
	}
	if !handleRe.MatchString(req.Handle) {
		jsonError(w, "handle must contain only ASCII letters, digits, underscore or hyphen", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		jsonError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hash, err := a.auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	user, err := a.db.CreateUser(db.CreateUserInput{
		Handle:       req.Handle,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			jsonError(w, "handle or email already taken", http.StatusConflict)
			return
		}
		slog.Error("creating user", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := a.auth.GenerateToken(user.ID, user.Handle)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	jsonResp(w, http.StatusCreated, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle   string `json:"handle"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, passwordHash, err := a.db.GetUserByHandle(req.Handle)
	if err != nil {
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !a.auth.CheckPassword(passwordHash, req.Password) {
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := a.auth.GenerateToken(user.ID, user.Handle)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := a.db.TouchLastSeen(user.ID); err != nil {
		slog.Warn("updating last seen", "error", err)
	}

	jsonResp(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (a *API) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := a.auth.ExtractClaims(r)
	if claims == nil {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	user, err := a.db.GetUserByID(claims.UserID())
	if err != nil {
		jsonError(w, "user not found", http.StatusNotFound)
		return
	}
	jsonResp(w, http.StatusOK, user)
}

// requireUser extracts the authenticated user ID or writes a 401.
func (a *API) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := a.auth.ExtractClaims(r)
	if claims == nil {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID(), true
}

func jsonResp(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
