package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"quizboard-service/internal/app"
	"quizboard-service/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// Handler exposes the game service over HTTP and WebSocket.
type Handler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewHandler(service *app.GameService) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes registers every endpoint on a new router.
func (h *Handler) Routes() *httprouter.Router {
	mux := httprouter.New()
	mux.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Write([]byte("ok"))
	})
	mux.GET("/quizzes", h.listQuizzes)
	mux.POST("/sessions", h.startSession)
	mux.GET("/sessions/:id", h.getSession)
	mux.DELETE("/sessions/:id", h.endSession)
	mux.GET("/sessions/:id/qr", h.sessionQR)
	mux.GET("/sessions/:id/ws", h.ServeWS)
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return mux
}

type startRequest struct {
	QuizID string `json:"quizId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	quizzes, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.QuizSummary{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeError(w, http.StatusBadRequest, "missing quizId")
		return
	}
	snap, err := h.service.StartSession(r.Context(), req.QuizID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Printf("session %s started for quiz %s", snap.SessionID, snap.QuizID)
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	snap, err := h.service.Snapshot(r.Context(), ps.ByName("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.EndSession(r.Context(), ps.ByName("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionQR renders a PNG QR code pointing at the session so a second screen can follow it.
func (h *Handler) sessionQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := h.service.Snapshot(r.Context(), ps.ByName("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuestionOpen), errors.Is(err, domain.ErrNoActiveQuestion), errors.Is(err, domain.ErrSessionEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
