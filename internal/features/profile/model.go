package profile

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// Profile holds the optional personal details attached to a user. A blank
// profile is created at signup and filled in later.
type Profile struct {
	types.BaseModel

	Gender        types.Gender `gorm:"type:varchar(20)" json:"gender"`
	DateOfBirth   string       `gorm:"type:varchar(20);column:date_of_birth" json:"dateOfBirth"`
	About         string       `gorm:"type:text" json:"about"`
	ContactNumber string       `gorm:"type:varchar(20);column:contact_number" json:"contactNumber"`
}

// TableName overrides the default table name.
func (Profile) TableName() string { return "profiles" }

// UpdateInput carries the full set of profile fields. Every field is written
// on update, so a field the client omits is cleared.
type UpdateInput struct {
	Gender        types.Gender
	DateOfBirth   string
	About         string
	ContactNumber string
}

// Create inserts an empty profile and returns it.
func Create(db *gorm.DB) (Profile, error) {
	var prf Profile
	err := db.Create(&prf).Error
	return prf, err
}

// Get retrieves a profile by ID.
func Get(db *gorm.DB, id uuid.UUID) (Profile, error) {
	var prf Profile
	if err := db.First(&prf, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return prf, ErrProfileNotFound
		}
		return prf, err
	}
	return prf, nil
}

// Update overwrites every profile field with the given input.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) error {
	return db.Model(&Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"gender":         input.Gender,
		"date_of_birth":  input.DateOfBirth,
		"about":          input.About,
		"contact_number": input.ContactNumber,
	}).Error
}

// Delete removes a profile.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Delete(&Profile{}, "id = ?", id).Error
}
