package server

import (
	"net/http"

	"github.com/festapp/telao/internal/game"
)

type ReplaceQuestionsResponse struct {
	Success   bool            `json:"success"`
	Questions []game.Question `json:"questions"`
}

func handleListQuestions(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := engine.Questions(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

func handleListAllQuestions(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := engine.AllQuestions(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

// handleReplaceQuestions swaps in a new full question set and pushes the
// resulting snapshot to every connected viewer.
func handleReplaceQuestions(engine *game.Engine, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input []game.QuestionInput
		if err := readJSON(r, &input); err != nil || input == nil {
			writeError(w, http.StatusBadRequest, "questions must be an array")
			return
		}

		questions, _, err := engine.ReplaceQuestions(r.Context(), input)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		hub.Broadcast()
		writeJSON(w, http.StatusOK, ReplaceQuestionsResponse{
			Success:   true,
			Questions: questions,
		})
	}
}
