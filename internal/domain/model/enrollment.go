package model

import (
	"time"

	"edu-subscription-platform/internal/domain"
)

// Enrollment tracks one student's progress through one course.
//
// CompletedVideos has set semantics while WatchTimeSeconds is a plain running
// sum over every progress call, so re-submitting a finished video adds its
// watch time again.
type Enrollment struct {
	ID                 string    `json:"id"`
	StudentID          string    `json:"student_id"`
	CourseID           string    `json:"course_id"`
	CompletedVideos    []string  `json:"completed_videos"`
	WatchTimeSeconds   int64     `json:"watch_time_seconds"`
	ProgressPercentage float64   `json:"progress_percentage"`
	EnrolledAt         time.Time `json:"enrolled_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewEnrollment(id, studentID, courseID string) (*Enrollment, error) {
	if id == "" || studentID == "" || courseID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Enrollment{
		ID:              id,
		StudentID:       studentID,
		CourseID:        courseID,
		CompletedVideos: []string{},
		EnrolledAt:      now,
		UpdatedAt:       now,
	}, nil
}

// ProgressPercentage is 100 * completed / total, and 0 for a course without videos.
func ProgressPercentage(completed, totalVideos int) float64 {
	if totalVideos <= 0 {
		return 0
	}
	return 100 * float64(completed) / float64(totalVideos)
}
