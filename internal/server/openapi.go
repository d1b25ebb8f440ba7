package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/festapp/telao/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthCheck struct {
	Status string `json:"status"`
}

type HealthResponse map[string]HealthCheck

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Telão API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Telão party game controller.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws")
	getWS.SetSummary("Game WebSocket")
	getWS.SetDescription("Upgrades to a WebSocket connection. The server immediately sends a stateSync frame and rebroadcasts after every accepted event.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/questions
	getQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/questions")
	getQuestions.SetSummary("List active questions")
	getQuestions.SetDescription("Returns the active questions sorted by their play order.")
	getQuestions.AddRespStructure([]game.Question{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getQuestions)

	// GET /api/questions/all
	getAllQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/questions/all")
	getAllQuestions.SetSummary("List all questions")
	getAllQuestions.SetDescription("Returns every stored question, including inactive ones, for the admin editor.")
	getAllQuestions.AddRespStructure([]game.Question{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getAllQuestions)

	// POST /api/questions
	postQuestions, _ := r.NewOperationContext(http.MethodPost, "/api/questions")
	postQuestions.SetSummary("Replace questions")
	postQuestions.SetDescription("Replaces the whole question set. Missing ids, orders and active flags are filled in.")
	postQuestions.AddReqStructure([]game.QuestionInput{})
	postQuestions.AddRespStructure(ReplaceQuestionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postQuestions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postQuestions)

	// GET /api/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the same full snapshot the WebSocket broadcasts.")
	getState.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// POST /api/state/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/state/reset")
	postReset.SetSummary("Reset cursor")
	postReset.SetDescription("Moves the game back to the first question and notifies all clients.")
	postReset.AddRespStructure(SuccessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReset)

	// POST /api/upload
	postUpload, _ := r.NewOperationContext(http.MethodPost, "/api/upload")
	postUpload.SetSummary("Upload media")
	postUpload.SetDescription("Accepts a multipart audio or image file and stores it under a randomized name.")
	postUpload.AddRespStructure(UploadResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postUpload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postUpload)

	// GET /api/audio/list
	getAudio, _ := r.NewOperationContext(http.MethodGet, "/api/audio/list")
	getAudio.SetSummary("List audio files")
	getAudio.SetDescription("Returns the uploaded audio tracks available to the player.")
	getAudio.AddRespStructure(AudioListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getAudio)

	// DELETE /api/audio/{filename}
	deleteAudio, _ := r.NewOperationContext(http.MethodDelete, "/api/audio/{filename}")
	deleteAudio.SetSummary("Delete audio file")
	deleteAudio.SetDescription("Removes one uploaded file by name.")
	deleteAudio.AddRespStructure(SuccessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	deleteAudio.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteAudio)

	// POST /api/import
	postImport, _ := r.NewOperationContext(http.MethodPost, "/api/import")
	postImport.SetSummary("Import questions")
	postImport.SetDescription("Replaces the question set from an uploaded CSV or JSON file.")
	postImport.AddRespStructure(ImportResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postImport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postImport)

	// GET /api/export
	getExport, _ := r.NewOperationContext(http.MethodGet, "/api/export")
	getExport.SetSummary("Export questions")
	getExport.SetDescription("Downloads the full question set as CSV or JSON, selected by the format query parameter.")
	getExport.AddRespStructure([]game.Question{}, openapi.WithHTTPStatus(http.StatusOK))
	getExport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getExport)

	// GET /api/qr/{view}
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/qr/{view}")
	getQR.SetSummary("View QR code")
	getQR.SetDescription("Renders a PNG QR code linking to the tv, remote or admin view.")
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	getQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getQR)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
