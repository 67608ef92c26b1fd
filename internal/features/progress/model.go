package progress

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// CourseProgress tracks which subsections a user has completed in a course.
// Exactly one record exists per (course, user) pair, created at enrollment.
type CourseProgress struct {
	types.BaseModel

	CourseID uuid.UUID `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_course_user_progress" json:"courseId"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_course_user_progress;index" json:"userId"`

	CompletedVideos []CompletedVideo `gorm:"foreignKey:CourseProgressID;constraint:OnDelete:CASCADE" json:"completedVideos,omitempty"`
}

// TableName overrides the default table name.
func (CourseProgress) TableName() string { return "course_progresses" }

// CompletedVideo marks a single subsection as watched. The composite primary
// key keeps the completed set duplicate free.
type CompletedVideo struct {
	CourseProgressID uuid.UUID `gorm:"type:uuid;primaryKey;column:course_progress_id" json:"courseProgressId"`
	SubsectionID     uuid.UUID `gorm:"type:uuid;primaryKey;column:subsection_id" json:"subsectionId"`
}

// TableName overrides the default table name.
func (CompletedVideo) TableName() string { return "completed_videos" }

// Create inserts a progress record with an empty completed set. Creating an
// existing (course, user) record returns the existing one.
func Create(db *gorm.DB, courseID, userID uuid.UUID) (CourseProgress, error) {
	record := CourseProgress{CourseID: courseID, UserID: userID}
	err := db.Where("course_id = ? AND user_id = ?", courseID, userID).
		FirstOrCreate(&record).Error
	return record, err
}

// Get retrieves the progress record for a (course, user) pair.
func Get(db *gorm.DB, courseID, userID uuid.UUID) (CourseProgress, error) {
	var record CourseProgress
	err := db.First(&record, "course_id = ? AND user_id = ?", courseID, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return record, ErrProgressNotFound
		}
		return record, err
	}
	return record, nil
}

// CompletedCount returns how many subsections the user completed in a course.
// A missing progress record counts as zero, matching the legacy behaviour.
func CompletedCount(db *gorm.DB, courseID, userID uuid.UUID) (int64, error) {
	record, err := Get(db, courseID, userID)
	if err != nil {
		if err == ErrProgressNotFound {
			return 0, nil
		}
		return 0, err
	}

	var count int64
	err = db.Model(&CompletedVideo{}).
		Where("course_progress_id = ?", record.ID).
		Count(&count).Error
	return count, err
}

// MarkCompleted adds a subsection to the completed set (idempotent).
func MarkCompleted(db *gorm.DB, progressID, subsectionID uuid.UUID) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&CompletedVideo{CourseProgressID: progressID, SubsectionID: subsectionID}).Error
}

// DeleteForUser removes every progress record (and completed set) for a user.
func DeleteForUser(db *gorm.DB, userID uuid.UUID) error {
	var ids []uuid.UUID
	if err := db.Model(&CourseProgress{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return err
	}

	if len(ids) > 0 {
		if err := db.Delete(&CompletedVideo{}, "course_progress_id IN ?", ids).Error; err != nil {
			return err
		}
	}

	return db.Delete(&CourseProgress{}, "user_id = ?", userID).Error
}
