package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lyricclash/internal/lyrics"
	"lyricclash/internal/models"
	"lyricclash/internal/repository"
	"lyricclash/internal/service"
	"lyricclash/internal/validation"
)

// LessonHandler serves the author-facing lesson API
type LessonHandler struct {
	lessonService *service.LessonService
	ledgerRepo    *repository.LedgerRepository
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessonService *service.LessonService, ledgerRepo *repository.LedgerRepository) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, ledgerRepo: ledgerRepo}
}

func writeLessonError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.Is(err, service.ErrLessonNotFound):
		respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
	case errors.Is(err, service.ErrNotLessonOwner):
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "lesson request failed", err)
	}
}

type lessonRequest struct {
	Title      string                   `json:"title"`
	Transcript string                   `json:"transcript"`
	AudioURL   string                   `json:"audioUrl"`
	Settings   *models.PracticeSettings `json:"settings"`
}

func (req *lessonRequest) settings() models.PracticeSettings {
	if req.Settings != nil {
		return *req.Settings
	}
	return models.DefaultPracticeSettings()
}

// CreateLesson handles POST /api/lessons
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var req lessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	lesson, err := h.lessonService.CreateLesson(claims.UserID, req.Title, req.Transcript, req.AudioURL, req.settings())
	if err != nil {
		writeLessonError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, lesson)
}

// ParseTimestamps handles POST /api/lessons/parse-timestamps, previewing how
// a raw transcript splits into timed lines without persisting anything
func (h *LessonHandler) ParseTimestamps(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, lyrics.ParseTimestamps(req.Text))
}

// ListLessons handles GET /api/lessons
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	lessons, err := h.lessonService.ListLessons(claims.UserID)
	if err != nil {
		writeLessonError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lessons)
}

// GetLesson handles GET /api/lessons/{id}
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	lesson, err := h.lessonService.GetLesson(id)
	if err != nil {
		writeLessonError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lesson)
}

// UpdateLesson handles PUT /api/lessons/{id}
func (h *LessonHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	var req struct {
		Title    string                  `json:"title"`
		AudioURL string                  `json:"audioUrl"`
		Lines    []models.LyricLine      `json:"lines"`
		Settings models.PracticeSettings `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	lesson := &models.Lesson{
		ID:       id,
		Title:    req.Title,
		AudioURL: req.AudioURL,
		Lines:    req.Lines,
		Settings: req.Settings,
	}
	lesson.Transcript = transcriptFromLines(req.Lines)

	if err := h.lessonService.UpdateLesson(claims.UserID, lesson); err != nil {
		writeLessonError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lesson)
}

// transcriptFromLines rebuilds the plain transcript from edited lines
func transcriptFromLines(lines []models.LyricLine) string {
	transcript := ""
	for i, line := range lines {
		if i > 0 {
			transcript += "\n"
		}
		transcript += line.Text
	}
	return transcript
}

// DeleteLesson handles DELETE /api/lessons/{id}
func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.lessonService.DeleteLesson(claims.UserID, id); err != nil {
		writeLessonError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// AssignLesson handles POST /api/lessons/{id}/assign
func (h *LessonHandler) AssignLesson(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	var req struct {
		LearnerID int64      `json:"learnerId"`
		DueAt     *time.Time `json:"dueAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LearnerID == 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	assignment, err := h.lessonService.AssignLesson(claims.UserID, id, req.LearnerID, req.DueAt)
	if err != nil {
		writeLessonError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, assignment)
}

// GrantBonusSwitches handles POST /api/assignments/{id}/bonus
func (h *LessonHandler) GrantBonusSwitches(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.ledgerRepo.Grant(r.Context(), id, req.Count); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "bonus grant failed", err)
		return
	}

	remaining, err := h.ledgerRepo.Remaining(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "bonus balance read failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"bonusSwitchesRemaining": remaining})
}
