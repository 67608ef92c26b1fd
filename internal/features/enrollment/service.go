package enrollment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/internal/features/course"
	"github.com/studyhub/studyhub-server-go/internal/features/progress"
	"github.com/studyhub/studyhub-server-go/internal/features/user"
	"github.com/studyhub/studyhub-server-go/pkg/metrics"
)

// Mailer sends the enrollment notification.
type Mailer interface {
	SendCourseEnrollment(to, studentName, courseName string) error
}

// Status describes the outcome of a single course enrollment.
type Status string

const (
	StatusEnrolled Status = "enrolled"
	StatusFailed   Status = "failed"
)

// Result is the per-course outcome of a batch enrollment. Failures carry the
// reason so callers can see exactly which side effects landed.
type Result struct {
	CourseID   uuid.UUID `json:"courseId"`
	CourseName string    `json:"courseName,omitempty"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Service performs best-effort batch enrollments.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
	mailer Mailer
}

// NewService constructs an enrollment service.
func NewService(db *gorm.DB, logger *slog.Logger, mailer Mailer) *Service {
	return &Service{db: db, logger: logger, mailer: mailer}
}

// EnrollStudents enrolls the user in each course independently. A failure on
// one course is recorded in its result and does not abort the remaining
// courses. Within one course the steps are sequential with no rollback:
// roster membership may exist without a progress record if a later step
// fails — the result list makes that window observable.
func (s *Service) EnrollStudents(ctx context.Context, courseIDs []uuid.UUID, userID uuid.UUID) []Result {
	results := make([]Result, 0, len(courseIDs))

	for _, courseID := range courseIDs {
		result := s.enrollOne(ctx, courseID, userID)
		metrics.ObserveEnrollment(result.Status == StatusEnrolled)

		if result.Status == StatusFailed {
			s.logger.ErrorContext(ctx, "enrollment failed",
				slog.String("course_id", courseID.String()),
				slog.String("user_id", userID.String()),
				slog.String("error", result.Error),
			)
		} else {
			s.logger.InfoContext(ctx, "student enrolled",
				slog.String("course_id", courseID.String()),
				slog.String("user_id", userID.String()),
			)
		}

		results = append(results, result)
	}

	return results
}

func (s *Service) enrollOne(ctx context.Context, courseID, userID uuid.UUID) Result {
	result := Result{CourseID: courseID, Status: StatusFailed}

	crs, err := course.Get(s.db, courseID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.CourseName = crs.Name

	if err := course.AddStudent(s.db, courseID, userID); err != nil {
		result.Error = err.Error()
		return result
	}

	if _, err := progress.Create(s.db, courseID, userID); err != nil {
		result.Error = err.Error()
		return result
	}

	usr, err := user.Get(s.db, userID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := s.mailer.SendCourseEnrollment(usr.Email, usr.FullName(), crs.Name); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Status = StatusEnrolled
	return result
}
