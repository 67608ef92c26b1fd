package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// Course represents a purchasable course with ordered content sections.
type Course struct {
	types.BaseModel

	Name         string      `gorm:"type:varchar(100);not null" json:"courseName"`
	Description  string      `gorm:"type:text" json:"courseDescription"`
	Price        types.Money `gorm:"type:numeric(10,2)" json:"price"`
	InstructorID uuid.UUID   `gorm:"type:uuid;not null;column:instructor_id;index" json:"instructorId"`

	Sections []Section `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"courseContent,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// Section is an ordered slice of course content.
type Section struct {
	types.BaseModel

	CourseID uuid.UUID `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Name     string    `gorm:"type:varchar(100);not null" json:"sectionName"`
	Position int       `gorm:"type:int;not null;default:0" json:"position"`

	Subsections []Subsection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"subSection,omitempty"`
}

// TableName overrides the default table name.
func (Section) TableName() string { return "sections" }

// Subsection is a single video lecture carrying a duration in seconds.
type Subsection struct {
	types.BaseModel

	SectionID    uuid.UUID `gorm:"type:uuid;not null;column:section_id;index" json:"sectionId"`
	Title        string    `gorm:"type:varchar(100);not null" json:"title"`
	TimeDuration int       `gorm:"type:int;not null;default:0;column:time_duration" json:"timeDuration"`
	VideoURL     string    `gorm:"type:text;column:video_url" json:"videoUrl"`
	Position     int       `gorm:"type:int;not null;default:0" json:"position"`
}

// TableName overrides the default table name.
func (Subsection) TableName() string { return "subsections" }

// Enrollment is a roster membership row. The composite primary key gives the
// roster set semantics: inserting an existing pair is a no-op.
type Enrollment struct {
	CourseID  uuid.UUID `gorm:"type:uuid;primaryKey;column:course_id" json:"courseId"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id;index" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// Get retrieves a course by ID without its content tree.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var crs Course
	if err := db.First(&crs, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return crs, ErrCourseNotFound
		}
		return crs, err
	}
	return crs, nil
}

// GetWithContent retrieves a course with its ordered sections and subsections.
func GetWithContent(db *gorm.DB, id uuid.UUID) (Course, error) {
	var crs Course
	err := db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Sections.Subsections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&crs, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return crs, ErrCourseNotFound
		}
		return crs, err
	}
	return crs, nil
}

// IsEnrolled reports whether the user is on the course roster.
func IsEnrolled(db *gorm.DB, courseID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddStudent adds the user to the course roster. Re-adding an enrolled user
// is a no-op, mirroring $addToSet.
func AddStudent(db *gorm.DB, courseID, userID uuid.UUID) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Enrollment{CourseID: courseID, UserID: userID}).Error
}

// RemoveStudent pulls the user from the course roster.
func RemoveStudent(db *gorm.DB, courseID, userID uuid.UUID) error {
	return db.Delete(&Enrollment{}, "course_id = ? AND user_id = ?", courseID, userID).Error
}

// EnrolledCount returns the roster size for a course.
func EnrolledCount(db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// EnrolledCourseIDs lists the ids of every course the user is enrolled in.
func EnrolledCourseIDs(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&Enrollment{}).Where("user_id = ?", userID).Pluck("course_id", &ids).Error
	return ids, err
}

// ListEnrolledWithContent returns every course the user is enrolled in with
// the full content tree loaded, ordered by enrollment date.
func ListEnrolledWithContent(db *gorm.DB, userID uuid.UUID) ([]Course, error) {
	var courses []Course
	err := db.
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.created_at ASC").
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Sections.Subsections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&courses).Error
	return courses, err
}

// ListByInstructor returns all courses owned by an instructor.
func ListByInstructor(db *gorm.DB, instructorID uuid.UUID) ([]Course, error) {
	var courses []Course
	err := db.Where("instructor_id = ?", instructorID).
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

// SubsectionCount counts the subsections across a loaded content tree.
func (c *Course) SubsectionCount() int {
	total := 0
	for _, section := range c.Sections {
		total += len(section.Subsections)
	}
	return total
}

// TotalDurationSeconds sums subsection durations across a loaded content tree.
func (c *Course) TotalDurationSeconds() int {
	total := 0
	for _, section := range c.Sections {
		for _, sub := range section.Subsections {
			total += sub.TimeDuration
		}
	}
	return total
}
