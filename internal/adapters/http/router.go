// Package httpadapter exposes the upload and chat surface as JSON over
// HTTP. It owns session state and translation between wire shapes and
// the core ports; all answering logic lives behind them.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hoangvum/pdf-chat-assistant/internal/config"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
	"github.com/hoangvum/pdf-chat-assistant/internal/observability/metrics"
)

const maxUploadBytes = 64 << 20

type Router struct {
	cfg       config.Config
	ingestUC  ports.DocumentIngestor
	processor ports.DocumentProcessor
	chatUC    ports.ChatService
	docs      ports.DocumentReader
	indexes   ports.IndexStore
	metrics   *metrics.HTTPServerMetrics
	sessions  *sessionRegistry
}

func NewRouter(
	cfg config.Config,
	ingestUC ports.DocumentIngestor,
	processor ports.DocumentProcessor,
	chatUC ports.ChatService,
	docs ports.DocumentReader,
	indexes ports.IndexStore,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		ingestUC:  ingestUC,
		processor: processor,
		chatUC:    chatUC,
		docs:      docs,
		indexes:   indexes,
		metrics:   serverMetrics,
		sessions:  newSessionRegistry(),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/sync", rt.ingestSync)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/indexes", rt.listIndexes)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/chat/continue", rt.chatContinue)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 5*time.Second)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

// ingestSync indexes files already present on the server's filesystem,
// blocking until done. Either "path" (one file) or "dir" (a batch) must
// be set.
func (rt *Router) ingestSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Path string `json:"path"`
		Dir  string `json:"dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	switch {
	case req.Path != "":
		result, err := rt.processor.IngestFile(r.Context(), req.Path)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case req.Dir != "":
		results, err := rt.processor.IngestDirectory(r.Context(), req.Dir)
		if err != nil && len(results) == 0 {
			writeError(w, err)
			return
		}
		resp := map[string]any{"results": results}
		if err != nil {
			resp["failed"] = strings.Split(err.Error(), "\n")
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "either 'path' or 'dir' is required"})
	}
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) listIndexes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	ids, err := rt.indexes.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_ids": ids})
}

type chatRequest struct {
	SessionID           string   `json:"session_id"`
	Question            string   `json:"question"`
	Mode                string   `json:"mode"`
	SelectedDocumentIDs []string `json:"selected_document_ids"`
}

type chatResponse struct {
	SessionID         string             `json:"session_id"`
	Answer            string             `json:"answer"`
	Context           string             `json:"context,omitempty"`
	Sources           []domain.SourceRef `json:"sources,omitempty"`
	NeedsContinuation bool               `json:"needs_continuation"`
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	sessionID, state, release := rt.sessions.acquire(req.SessionID)
	defer release()

	if req.Mode != "" {
		switch domain.Mode(req.Mode) {
		case domain.ModeChat, domain.ModeDocumentQuery, domain.ModeAuto:
			state.Mode = domain.Mode(req.Mode)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown mode"})
			return
		}
	}
	if req.SelectedDocumentIDs != nil {
		state.SelectedDocumentIDs = req.SelectedDocumentIDs
	}

	start := time.Now()
	answer, err := rt.chatUC.ProcessQuestion(r.Context(), state, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChatTurn("api", string(state.Mode), len(answer.Sources), time.Since(start))
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:         sessionID,
		Answer:            answer.Text,
		Context:           answer.Context,
		Sources:           answer.Sources,
		NeedsContinuation: rt.chatUC.NeedsContinuation(answer.Text),
	})
}

func (rt *Router) chatContinue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	sessionID, state, release := rt.sessions.acquire(req.SessionID)
	defer release()

	answer, err := rt.chatUC.Continue(r.Context(), state)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordContinuation("api")
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:         sessionID,
		Answer:            answer.Text,
		Context:           answer.Context,
		NeedsContinuation: rt.chatUC.NeedsContinuation(answer.Text),
	})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
