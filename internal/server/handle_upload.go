package server

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20

type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func handleUpload(logger *slog.Logger, uploads *UploadDir) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		ext := filepath.Ext(header.Filename)
		if !uploads.Allowed(ext) {
			writeError(w, http.StatusBadRequest, "unsupported file type")
			return
		}

		name, err := uploads.Save(file, header.Filename)
		if err != nil {
			logger.Error("saving upload", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store file")
			return
		}

		writeJSON(w, http.StatusOK, UploadResponse{
			Success:  true,
			Filename: name,
			URL:      "/uploads/" + name,
		})
	}
}

type AudioListResponse struct {
	Files []AudioFile `json:"files"`
}

func handleListAudio(logger *slog.Logger, uploads *UploadDir) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := uploads.ListAudio()
		if err != nil {
			logger.Error("listing audio files", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list audio files")
			return
		}
		writeJSON(w, http.StatusOK, AudioListResponse{Files: files})
	}
}

func handleDeleteAudio(logger *slog.Logger, uploads *UploadDir) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		if err := uploads.Delete(name); err != nil {
			if err == ErrNotFound {
				writeError(w, http.StatusNotFound, "file not found")
				return
			}
			logger.Error("deleting audio file", "error", err, "filename", name)
			writeError(w, http.StatusInternalServerError, "failed to delete file")
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	}
}
