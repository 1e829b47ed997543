package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"lyricclash/internal/budget"
	"lyricclash/internal/draft"
	"lyricclash/internal/lyrics"
	"lyricclash/internal/models"
	"lyricclash/internal/playback"
	"lyricclash/internal/repository"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrNotAssignee        = errors.New("assignment belongs to another learner")
	ErrAttemptClosed      = errors.New("assignment no longer accepts mutations")
	ErrSwitchDenied       = errors.New("read mode switch budget exhausted")
)

// Attempt is one learner's live practice session over an assignment. All
// mutations go through its lock; the embedded saver and accountant handle
// their own background work.
type Attempt struct {
	mu sync.Mutex

	assignment *models.Assignment
	lesson     *models.Lesson
	prepared   []lyrics.PreparedLine
	draft      *models.AttemptDraft

	saver      *draft.Saver
	accountant *budget.Accountant
	tracker    *playback.Tracker
	recorder   *playback.CommandRecorder

	restoredFromCache bool
	startedAt         time.Time
	// playbackStartedAt is zero until the learner first plays audio; grading
	// measures time taken from this moment
	playbackStartedAt time.Time
	lastSaveErr       error
	closed            bool
}

// markPlaybackStarted records the first moment audio plays. Callers hold the
// attempt lock.
func (a *Attempt) markPlaybackStarted() {
	if a.playbackStartedAt.IsZero() {
		a.playbackStartedAt = time.Now()
	}
}

// AttemptState is the snapshot handed to the transport layer when an attempt
// starts or is inspected
type AttemptState struct {
	Assignment             *models.Assignment    `json:"assignment"`
	Lesson                 *models.Lesson        `json:"lesson"`
	Prepared               []lyrics.PreparedLine `json:"prepared"`
	Draft                  *models.AttemptDraft  `json:"draft"`
	RestoredFromCache      bool                  `json:"restoredFromCache"`
	BaseSwitchesRemaining  *int                  `json:"baseSwitchesRemaining"` // Nil means unlimited
	BonusSwitchesRemaining int                   `json:"bonusSwitchesRemaining"`
	ActiveLineID           string                `json:"activeLineId"`
	Commands               []playback.Command    `json:"commands,omitempty"`
}

// PracticeService orchestrates live attempts: draft persistence across both
// tiers, playback tracking, the switch budget and final grading
type PracticeService struct {
	lessonRepo     *repository.LessonRepository
	assignmentRepo *repository.AssignmentRepository
	submissionRepo *repository.SubmissionRepository
	userRepo       *repository.UserRepository
	ledgerRepo     *repository.LedgerRepository

	localDrafts  *draft.MemStore
	remoteDrafts draft.Store
	email        *EmailService
	debounce     time.Duration

	mu       sync.Mutex
	attempts map[int64]*Attempt
}

// NewPracticeService creates a new practice service
func NewPracticeService(
	lessonRepo *repository.LessonRepository,
	assignmentRepo *repository.AssignmentRepository,
	submissionRepo *repository.SubmissionRepository,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	localDrafts *draft.MemStore,
	remoteDrafts draft.Store,
	email *EmailService,
	debounce time.Duration,
) *PracticeService {
	return &PracticeService{
		lessonRepo:     lessonRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		ledgerRepo:     ledgerRepo,
		localDrafts:    localDrafts,
		remoteDrafts:   remoteDrafts,
		email:          email,
		debounce:       debounce,
		attempts:       make(map[int64]*Attempt),
	}
}

// LocalDrafts exposes the in-process tier for periodic pruning
func (s *PracticeService) LocalDrafts() *draft.MemStore {
	return s.localDrafts
}

// StartAttempt loads or resumes a learner's attempt: both draft tiers are
// read, reconciled last-write-wins, and the adopted draft becomes the live
// working state
func (s *PracticeService) StartAttempt(ctx context.Context, assignmentID, learnerID int64) (*AttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt, ok := s.attempts[assignmentID]; ok {
		return s.snapshot(attempt), nil
	}

	assignment, err := s.assignmentRepo.GetAssignmentByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.LearnerID != learnerID {
		return nil, ErrNotAssignee
	}
	if !assignment.IsPending() {
		return nil, ErrAttemptClosed
	}

	lesson, err := s.lessonRepo.GetLessonByID(assignment.LessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	key := draft.Key{PracticeKind: models.PracticeKindLyric, AssignmentID: assignmentID}

	local, err := s.localDrafts.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached draft: %w", err)
	}
	remote, err := s.remoteDrafts.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted draft: %w", err)
	}

	adopted, fromCache := draft.Reconcile(local, remote)
	if adopted == nil {
		adopted = models.NewAttemptDraft(initialMode(lesson.Settings.DefaultMode))
		adopted.UpdatedAt = time.Now()
	}

	attempt := &Attempt{
		assignment:        assignment,
		lesson:            lesson,
		prepared:          lyrics.Prepare(lesson.Lines, lesson.Settings),
		draft:             adopted,
		recorder:          &playback.CommandRecorder{},
		restoredFromCache: fromCache,
		startedAt:         time.Now(),
	}
	attempt.tracker = playback.NewTracker(attempt.recorder, attempt.prepared)
	attempt.saver = draft.NewSaver(key, s.localDrafts, s.remoteDrafts, nil, s.debounce, func(err error) {
		attempt.mu.Lock()
		attempt.lastSaveErr = err
		attempt.mu.Unlock()
	})

	bonus, err := s.ledgerRepo.Remaining(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read bonus balance: %w", err)
	}
	attempt.accountant = budget.New(
		baseRemaining(lesson.Settings.MaxReadModeSwitches, adopted.ReadModeSwitchesUsed),
		bonus,
		s.ledgerRepo.ForAssignment(assignmentID),
		nil,
	)

	// Hydration write: seeds the local tier, schedules nothing remote
	if err := attempt.saver.Record(ctx, adopted.Clone()); err != nil {
		return nil, fmt.Errorf("failed to seed draft cache: %w", err)
	}

	s.attempts[assignmentID] = attempt
	return s.snapshot(attempt), nil
}

// initialMode resolves a lesson default to the mode a fresh draft starts in.
// "both" starts in read-along so the learner hears the song before filling.
func initialMode(defaultMode string) string {
	if defaultMode == models.ModeFill {
		return models.ModeFill
	}
	return models.ModeRead
}

// baseRemaining converts a lesson switch limit and the switches a resumed
// draft already used into the accountant's starting base. Nil stays nil
// (unlimited).
func baseRemaining(limit *int, used int) *int {
	if limit == nil {
		return nil
	}
	remaining := *limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// timeTakenSeconds measures the graded attempt duration. Timing runs from the
// first playback start to submission; an attempt submitted without ever
// playing audio falls back to the moment it was loaded.
func timeTakenSeconds(loadedAt, playbackStartedAt, submittedAt time.Time) float64 {
	start := playbackStartedAt
	if start.IsZero() {
		start = loadedAt
	}
	return submittedAt.Sub(start).Seconds()
}

func (s *PracticeService) attempt(assignmentID, learnerID int64) (*Attempt, error) {
	s.mu.Lock()
	attempt, ok := s.attempts[assignmentID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	if attempt.assignment.LearnerID != learnerID {
		return nil, ErrNotAssignee
	}
	return attempt, nil
}

func (s *PracticeService) snapshot(attempt *Attempt) *AttemptState {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	base, bonus := attempt.accountant.Remaining()
	return &AttemptState{
		Assignment:             attempt.assignment,
		Lesson:                 attempt.lesson,
		Prepared:               attempt.prepared,
		Draft:                  attempt.draft.Clone(),
		RestoredFromCache:      attempt.restoredFromCache,
		BaseSwitchesRemaining:  base,
		BonusSwitchesRemaining: bonus,
		ActiveLineID:           attempt.tracker.ActiveLineID(),
	}
}

// UpdateAnswer records one blank's submitted text into the draft
func (s *PracticeService) UpdateAnswer(ctx context.Context, assignmentID, learnerID int64, lineID string, answerIndex int, value string) error {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if attempt.closed {
		return ErrAttemptClosed
	}

	attempt.draft.SetAnswer(lineID, answerIndex, value)
	attempt.draft.UpdatedAt = time.Now()
	return attempt.saver.Record(ctx, attempt.draft.Clone())
}

// SwitchToRead moves the attempt into read-along mode if the switch budget
// allows. The switch itself is immediate; a failed bonus confirmation later
// rolls back only the accounting.
func (s *PracticeService) SwitchToRead(ctx context.Context, assignmentID, learnerID int64) (*AttemptState, error) {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	if attempt.closed {
		attempt.mu.Unlock()
		return nil, ErrAttemptClosed
	}

	if attempt.draft.Mode != models.ModeRead {
		if !attempt.accountant.SwitchToRead(ctx) {
			attempt.mu.Unlock()
			return nil, ErrSwitchDenied
		}
		attempt.draft.Mode = models.ModeRead
		attempt.draft.ReadModeSwitchesUsed++
		attempt.draft.UpdatedAt = time.Now()
		if err := attempt.saver.Record(ctx, attempt.draft.Clone()); err != nil {
			attempt.mu.Unlock()
			return nil, err
		}
	}
	attempt.mu.Unlock()

	return s.snapshot(attempt), nil
}

// SwitchToFill moves the attempt into fill-the-blank mode. Switching this
// way is always free.
func (s *PracticeService) SwitchToFill(ctx context.Context, assignmentID, learnerID int64) (*AttemptState, error) {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	if attempt.closed {
		attempt.mu.Unlock()
		return nil, ErrAttemptClosed
	}
	if attempt.draft.Mode != models.ModeFill {
		attempt.draft.Mode = models.ModeFill
		attempt.draft.UpdatedAt = time.Now()
		if err := attempt.saver.Record(ctx, attempt.draft.Clone()); err != nil {
			attempt.mu.Unlock()
			return nil, err
		}
	}
	attempt.mu.Unlock()

	return s.snapshot(attempt), nil
}

// FlushDraft pushes the current draft to the remote tier immediately. Used
// when the client loses visibility or the learner saves manually.
func (s *PracticeService) FlushDraft(ctx context.Context, assignmentID, learnerID int64) error {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if attempt.closed {
		return ErrAttemptClosed
	}
	return attempt.saver.Flush(ctx, attempt.draft.Clone())
}

// Tick reports a playback position and returns the active line plus any
// queued playback commands for the client
func (s *PracticeService) Tick(assignmentID, learnerID int64, position float64) (activeID string, commands []playback.Command, err error) {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return "", nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	attempt.markPlaybackStarted()
	attempt.recorder.SetPosition(position)
	activeID, _ = attempt.tracker.Tick(position)
	return activeID, attempt.recorder.Drain(), nil
}

// PreviewLine queues playback commands that play exactly one line
func (s *PracticeService) PreviewLine(assignmentID, learnerID int64, lineIndex int) ([]playback.Command, error) {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if err := attempt.tracker.PreviewLine(lineIndex); err != nil {
		return nil, err
	}
	attempt.markPlaybackStarted()
	return attempt.recorder.Drain(), nil
}

// StopPlayback clears any armed preview stop point
func (s *PracticeService) StopPlayback(assignmentID, learnerID int64) error {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	attempt.tracker.Stop()
	return nil
}

// Submit grades the attempt, persists the result, transitions the assignment
// and tears down both draft tiers. A second submit for the same assignment
// fails cleanly.
func (s *PracticeService) Submit(ctx context.Context, assignmentID, learnerID int64) (*models.SubmissionResult, *lyrics.Score, error) {
	attempt, err := s.attempt(assignmentID, learnerID)
	if err != nil {
		return nil, nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if attempt.closed {
		return nil, nil, ErrAttemptClosed
	}

	score := lyrics.ScoreAnswers(attempt.prepared, attempt.draft.Answers)
	submittedAt := time.Now()

	transitioned, err := s.assignmentRepo.MarkSubmitted(assignmentID, submittedAt)
	if err != nil {
		return nil, nil, err
	}
	if !transitioned {
		return nil, nil, ErrAttemptClosed
	}

	result := &models.SubmissionResult{
		AssignmentID:         assignmentID,
		LessonID:             attempt.lesson.ID,
		ScorePercent:         score.ScorePercent,
		Correct:              score.Correct,
		Total:                score.Total,
		TimeTakenSeconds:     timeTakenSeconds(attempt.startedAt, attempt.playbackStartedAt, submittedAt),
		ReadModeSwitchesUsed: attempt.draft.ReadModeSwitchesUsed,
		SubmittedAt:          submittedAt,
	}
	result, err = s.submissionRepo.CreateSubmission(result)
	if err != nil {
		return nil, nil, err
	}

	// Stop the saver first so a pending debounce cannot resurrect the draft
	attempt.saver.Close()
	attempt.closed = true

	key := draft.Key{PracticeKind: models.PracticeKindLyric, AssignmentID: assignmentID}
	if err := s.localDrafts.Delete(ctx, key); err != nil {
		log.Printf("Failed to drop cached draft for assignment %d: %v", assignmentID, err)
	}
	if err := s.remoteDrafts.Delete(ctx, key); err != nil {
		log.Printf("Failed to drop persisted draft for assignment %d: %v", assignmentID, err)
	}

	s.mu.Lock()
	delete(s.attempts, assignmentID)
	s.mu.Unlock()

	s.notifyAuthor(attempt, result)

	return result, &score, nil
}

// notifyAuthor emails the lesson author about the submission in the
// background; delivery failures never affect the submission
func (s *PracticeService) notifyAuthor(attempt *Attempt, result *models.SubmissionResult) {
	if s.email == nil || !s.email.IsEnabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		author, err := s.userRepo.GetUserByID(attempt.lesson.CreatedBy)
		if err != nil || author == nil {
			log.Printf("Failed to resolve author for lesson %d: %v", attempt.lesson.ID, err)
			return
		}
		learner, err := s.userRepo.GetUserByID(attempt.assignment.LearnerID)
		learnerName := "A learner"
		if err == nil && learner != nil {
			learnerName = learner.Name
		}

		if err := s.email.SendSubmissionResultEmail(ctx, author.Email, author.Name, learnerName, attempt.lesson.Title, result); err != nil {
			log.Printf("Failed to send submission email: %v", err)
		}
	}()
}
