package models

import "time"

// SubmissionResult is the immutable outcome of grading one attempt
type SubmissionResult struct {
	ID                   int64     `json:"id"`
	AssignmentID         int64     `json:"assignmentId"`
	LessonID             int64     `json:"lessonId"`
	ScorePercent         float64   `json:"scorePercent"` // 0-100, one decimal place
	Correct              int       `json:"correct"`
	Total                int       `json:"total"`
	TimeTakenSeconds     float64   `json:"timeTakenSeconds"`
	ReadModeSwitchesUsed int       `json:"readModeSwitchesUsed"`
	SubmittedAt          time.Time `json:"submittedAt"`
}
