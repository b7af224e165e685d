package widget

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	sessions *Registry
}

func NewHandler(sessions *Registry) *Handler {
	return &Handler{sessions: sessions}
}

// CreateSession starts a new signed-out, closed widget.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	w.Header().Set("X-Session-Id", s.ID())
	respondJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Company string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := s.SignIn(r.Context(), payload.Company); err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*Session).Toggle)
}

func (h *Handler) StartChat(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*Session).StartChat)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*Session).Close)
}

// SendMessage accepts the user message; the bot reply arrives later and is
// visible through GetSession or the stream.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := s.SendUserMessage(payload.Text); err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, s.Snapshot())
}

func (h *Handler) ActivateSuggestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid suggestion index")
		return
	}

	if err := s.ActivateSuggestion(index); err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, s.Snapshot())
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(*Session) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := op(s); err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return s, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case IsRejection(err):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"notice": err.Error()})
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUnknownSuggestion):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotSignedIn),
		errors.Is(err, ErrAlreadySignedIn),
		errors.Is(err, ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[http] processing error: %v", err)
		respondError(w, http.StatusInternalServerError, "processing error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
