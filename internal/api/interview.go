// CLAUDE:SUMMARY Interview HTTP handlers — next question, answer submission, progress, transcript, reset
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hazyhaar/lifeweave/internal/db"
	"github.com/hazyhaar/lifeweave/internal/interview"
)

func (a *API) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	q, completed, err := a.engine.FirstQuestion(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if completed {
		jsonResp(w, http.StatusOK, map[string]any{"completed": true})
		return
	}
	jsonResp(w, http.StatusOK, map[string]any{
		"question":  q,
		"completed": false,
	})
}

func (a *API) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req struct {
		QuestionID string `json:"question_id"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if strings.Contains(err.Error(), "too large") {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := a.engine.Advance(r.Context(), userID, req.QuestionID, req.Text)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := map[string]any{
		"metrics":    res.Metrics,
		"aqi":        res.Metrics.AQI(),
		"completed":  res.Completed,
		"sufficient": res.Sufficient,
	}
	if res.Question != nil {
		resp["question"] = res.Question
	}
	jsonResp(w, http.StatusOK, resp)
}

func (a *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	p, err := a.engine.Progress(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := map[string]any{
		"state":           p.State,
		"theme":           p.Theme,
		"theme_position":  p.ThemePosition,
		"theme_total":     p.ThemeTotal,
		"story":           p.Story,
		"question_count":  p.QuestionCount,
		"answer_count":    p.AnswerCount,
		"total_chars":     p.TotalChars,
		"percent":         p.Percent,
		"average_aqi":     p.AverageAQI,
		"sufficient":      p.Sufficient,
		"synthesis_ready": p.SynthesisReady,
	}
	if bio, err := a.db.LatestBiography(userID); err == nil {
		resp["biography"] = bio
	}
	jsonResp(w, http.StatusOK, resp)
}

func (a *API) handleTranscript(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	entries, err := db.Transcript(a.db, userID)
	if err != nil {
		slog.Error("reading transcript", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusOK, map[string]any{"entries": entries})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.engine.Reset(r.Context(), userID); err != nil {
		writeEngineError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, map[string]any{"reset": true})
}

// writeEngineError maps the engine's error classes onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrValidation):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, interview.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, interview.ErrConflict):
		jsonError(w, "please retry", http.StatusConflict)
	default:
		slog.Error("interview engine", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}
