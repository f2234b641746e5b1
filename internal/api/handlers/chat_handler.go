package handlers

import (
	"net/http"

	appMiddleware "github.com/osezele-ek/MiniDrive/internal/api/middlewares"
	"github.com/osezele-ek/MiniDrive/internal/core"
)

type ChatHandler struct {
	llm core.LLMProvider
}

func NewChatHandler(llm core.LLMProvider) *ChatHandler {
	return &ChatHandler{llm: llm}
}

// Chat forwards the prompt parameter to the LLM and returns its reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	_, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	prompt := r.URL.Query().Get("prompt")
	if prompt == "" {
		http.Error(w, "query parameter 'prompt' is required", http.StatusBadRequest)
		return
	}

	answer, err := h.llm.Generate(r.Context(), "", prompt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}
