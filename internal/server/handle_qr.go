package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

var qrViews = map[string]bool{"tv": true, "remote": true, "admin": true}

// handleQR renders a QR code that points at one of the client views so
// players can join from their phones.
func handleQR(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := chi.URLParam(r, "view")
		if !qrViews[view] {
			writeError(w, http.StatusNotFound, "unknown view")
			return
		}

		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		target := scheme + "://" + r.Host + "/" + view

		png, err := qrcode.Encode(target, qrcode.Medium, 320)
		if err != nil {
			logger.Error("encoding qr code", "error", err, "target", target)
			writeError(w, http.StatusInternalServerError, "failed to generate qr code")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(png)
	}
}
