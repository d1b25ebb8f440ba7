package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/festapp/telao/internal/game"
)

type ImportResponse struct {
	Success  bool `json:"success"`
	Imported int  `json:"imported"`
}

// handleImport replaces the question set from an uploaded CSV or JSON
// file. The file extension decides the parser.
func handleImport(logger *slog.Logger, engine *game.Engine, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		var input []game.QuestionInput
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".json":
			if err := json.NewDecoder(file).Decode(&input); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json file")
				return
			}
		case ".csv":
			input, err = parseQuestionsCSV(file)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid csv file")
				return
			}
		default:
			writeError(w, http.StatusBadRequest, "unsupported import format, use .csv or .json")
			return
		}

		questions, changed, err := engine.ReplaceQuestions(r.Context(), input)
		if err != nil {
			logger.Error("importing questions", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save questions")
			return
		}
		if changed {
			hub.Broadcast()
		}

		writeJSON(w, http.StatusOK, ImportResponse{Success: true, Imported: len(questions)})
	}
}

// handleExport streams the full question set as CSV or JSON, defaulting
// to JSON.
func handleExport(logger *slog.Logger, engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := engine.AllQuestions(r.Context())
		if err != nil {
			logger.Error("loading questions for export", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load questions")
			return
		}

		stamp := time.Now().Format("2006-01-02")
		switch r.URL.Query().Get("format") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", "questions-"+stamp+".csv"))
			if err := generateQuestionsCSV(w, questions); err != nil {
				logger.Error("writing csv export", "error", err)
			}
		case "", "json":
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", "questions-"+stamp+".json"))
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(questions); err != nil {
				logger.Error("writing json export", "error", err)
			}
		default:
			writeError(w, http.StatusBadRequest, "unsupported export format, use csv or json")
		}
	}
}
