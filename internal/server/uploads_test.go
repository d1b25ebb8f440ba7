package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUploadAndListAudio(t *testing.T) {
	r := apiRouter(t)

	body, contentType := multipartFile(t, "track.mp3", "not really mp3 bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp UploadResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Success {
		t.Error("expected success")
	}
	if !strings.HasSuffix(resp.Filename, ".mp3") {
		t.Errorf("expected .mp3 suffix, got %q", resp.Filename)
	}
	if resp.URL != "/uploads/"+resp.Filename {
		t.Errorf("expected url under /uploads/, got %q", resp.URL)
	}
	if resp.Filename == "track.mp3" {
		t.Error("expected randomized filename")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/audio/list", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var list AudioListResponse
	json.NewDecoder(w.Body).Decode(&list)
	if len(list.Files) != 1 || list.Files[0].Filename != resp.Filename {
		t.Errorf("expected uploaded track in list, got %+v", list.Files)
	}
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	r := apiRouter(t)

	body, contentType := multipartFile(t, "malware.exe", "nope")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeleteAudio(t *testing.T) {
	r := apiRouter(t)

	body, contentType := multipartFile(t, "track.wav", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp UploadResponse
	json.NewDecoder(w.Body).Decode(&resp)

	req = httptest.NewRequest(http.MethodDelete, "/api/audio/"+resp.Filename, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/audio/list", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var list AudioListResponse
	json.NewDecoder(w.Body).Decode(&list)
	if len(list.Files) != 0 {
		t.Errorf("expected empty list after delete, got %+v", list.Files)
	}
}

func TestDeleteAudioNotFound(t *testing.T) {
	r := apiRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/audio/nope.mp3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestQRCode(t *testing.T) {
	r := apiRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/qr/remote", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected png bytes")
	}
}

func TestQRCodeUnknownView(t *testing.T) {
	r := apiRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/qr/lobby", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
