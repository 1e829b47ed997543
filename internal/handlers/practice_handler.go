package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lyricclash/internal/service"
)

// PracticeHandler serves the learner-facing practice API
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

func assignmentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writePracticeError maps service errors onto HTTP statuses
func writePracticeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrLessonNotFound):
		respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
	case errors.Is(err, service.ErrNotAssignee):
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
	case errors.Is(err, service.ErrAttemptClosed):
		respondWithError(w, http.StatusConflict, "Assignment already submitted or expired", "", nil)
	case errors.Is(err, service.ErrSwitchDenied):
		respondWithError(w, http.StatusUnprocessableEntity, "No read-along switches remaining", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "practice request failed", err)
	}
}

// StartAttempt handles GET /api/assignments/{id}/practice
func (h *PracticeHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	state, err := h.practiceService.StartAttempt(r.Context(), id, learnerID)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// UpdateAnswer handles PUT /api/assignments/{id}/draft
func (h *PracticeHandler) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	var req struct {
		LineID      string `json:"lineId"`
		AnswerIndex int    `json:"answerIndex"`
		Value       string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LineID == "" || req.AnswerIndex < 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.practiceService.UpdateAnswer(r.Context(), id, learnerID, req.LineID, req.AnswerIndex, req.Value); err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// FlushDraft handles POST /api/assignments/{id}/draft/flush
func (h *PracticeHandler) FlushDraft(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.practiceService.FlushDraft(r.Context(), id, learnerID); err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// SwitchToRead handles POST /api/assignments/{id}/switch-read
func (h *PracticeHandler) SwitchToRead(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	state, err := h.practiceService.SwitchToRead(r.Context(), id, learnerID)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// SwitchToFill handles POST /api/assignments/{id}/switch-fill
func (h *PracticeHandler) SwitchToFill(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	state, err := h.practiceService.SwitchToFill(r.Context(), id, learnerID)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// Tick handles POST /api/assignments/{id}/tick
func (h *PracticeHandler) Tick(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	var req struct {
		Position float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	activeID, commands, err := h.practiceService.Tick(id, learnerID, req.Position)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"activeLineId": activeID,
		"commands":     commands,
	})
}

// PreviewLine handles POST /api/assignments/{id}/preview
func (h *PracticeHandler) PreviewLine(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	var req struct {
		LineIndex int `json:"lineIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	commands, err := h.practiceService.PreviewLine(id, learnerID, req.LineIndex)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"commands": commands})
}

// StopPlayback handles POST /api/assignments/{id}/stop
func (h *PracticeHandler) StopPlayback(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.practiceService.StopPlayback(id, learnerID); err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// Submit handles POST /api/assignments/{id}/submit
func (h *PracticeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r)
	if !ok {
		return
	}
	id, err := assignmentID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	result, score, err := h.practiceService.Submit(r.Context(), id, learnerID)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"score":  score,
	})
}
