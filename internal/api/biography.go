// CLAUDE:SUMMARY Biography HTTP handlers — gated synthesis, versions, edits, txt/md/jsonl export
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hazyhaar/lifeweave/internal/db"
	"github.com/hazyhaar/lifeweave/internal/export"
)

func (a *API) handleGenerateBiography(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Style    string `json:"style"`
		Language string `json:"language"`
	}
	if r.Body != nil {
		// Body is optional; defaults apply when absent or empty.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Style == "" {
		req.Style = "natural"
	}
	if req.Language == "" {
		req.Language = "en"
	}

	ready, err := a.engine.ReadyForSynthesis(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if !ready {
		jsonError(w, "not enough interview material yet", http.StatusPreconditionFailed)
		return
	}

	entries, err := db.Transcript(a.db, userID)
	if err != nil {
		slog.Error("reading transcript", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	var sb strings.Builder
	if err := export.WriteTranscript(&sb, export.FormatText, "", entries, nil); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	content, err := a.biographer.Synthesize(r.Context(), sb.String(), req.Style, req.Language)
	if err != nil {
		slog.Error("biography synthesis", "error", err)
		jsonError(w, "biography generation failed", http.StatusBadGateway)
		return
	}

	bio, err := a.db.CreateBiography(userID, content, req.Style, req.Language)
	if err != nil {
		slog.Error("storing biography", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusCreated, bio)
}

func (a *API) handleLatestBiography(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	bio, err := a.db.LatestBiography(userID)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "no biography yet", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusOK, bio)
}

func (a *API) handleBiographyVersions(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	bios, err := a.db.ListBiographies(userID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusOK, map[string]any{"versions": bios})
}

func (a *API) handleGetBiography(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	bio, err := a.db.GetBiography(r.PathValue("id"), userID)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "biography not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusOK, bio)
}

func (a *API) handleEditBiography(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		jsonError(w, "content is required", http.StatusBadRequest)
		return
	}

	updated, err := a.db.UpdateBiography(r.PathValue("id"), userID, req.Content)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !updated {
		jsonError(w, "biography not found", http.StatusNotFound)
		return
	}
	bio, err := a.db.GetBiography(r.PathValue("id"), userID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusOK, bio)
}

func (a *API) handleExportBiography(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	bio, err := a.db.GetBiography(r.PathValue("id"), userID)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "biography not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.writeExport(w, r, format, nil, bio)
}

func (a *API) handleExportInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries, err := db.Transcript(a.db, userID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	var bio *db.Biography
	if latest, err := a.db.LatestBiography(userID); err == nil {
		bio = latest
	}
	a.writeExport(w, r, format, entries, bio)
}

func (a *API) writeExport(w http.ResponseWriter, r *http.Request, format export.Format, entries []db.TranscriptEntry, bio *db.Biography) {
	claims := a.auth.ExtractClaims(r)
	handle := ""
	if claims != nil {
		handle = claims.Handle
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "lifeweave."+string(format)))
	if err := export.WriteTranscript(w, format, handle, entries, bio); err != nil {
		slog.Error("writing export", "error", err)
	}
}
