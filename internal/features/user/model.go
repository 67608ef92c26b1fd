package user

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// User represents a platform account. Accounts are created at signup and
// mutated by the profile and enrollment workflows.
type User struct {
	types.BaseModel

	FirstName   string            `gorm:"type:varchar(50);not null;column:first_name" json:"firstName"`
	LastName    string            `gorm:"type:varchar(50);not null;column:last_name" json:"lastName"`
	Email       string            `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password    string            `gorm:"type:varchar(255);not null" json:"-"`
	AccountType types.AccountType `gorm:"type:varchar(20);not null;default:'student';column:account_type;index" json:"accountType"`
	Image       string            `gorm:"type:text" json:"image"`
	ProfileID   uuid.UUID         `gorm:"type:uuid;not null;column:profile_id" json:"profileId"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	AccountType types.AccountType
	ProfileID   uuid.UUID
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := db.First(&usr, "LOWER(email) = ?", normalized).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// Create inserts a new user with a hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	if len(input.Password) < 8 {
		return User{}, ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		return User{}, err
	}

	accountType := input.AccountType
	if accountType == "" {
		accountType = types.AccountTypeStudent
	}

	usr := User{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Password:    string(hashedPassword),
		AccountType: accountType,
		ProfileID:   input.ProfileID,
	}

	if err := db.Create(&usr).Error; err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "UNIQUE") {
			return usr, ErrEmailTaken
		}
		return usr, err
	}

	return usr, nil
}

// UpdateName overwrites both name fields unconditionally.
func UpdateName(db *gorm.DB, id uuid.UUID, firstName, lastName string) error {
	return db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
	}).Error
}

// SetImage stores the hosted avatar URL on the user.
func SetImage(db *gorm.DB, id uuid.UUID, url string) error {
	return db.Model(&User{}).Where("id = ?", id).Update("image", url).Error
}

// Delete removes a user.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ComparePassword checks a candidate password against the stored hash.
func (u *User) ComparePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// FullName joins the name fields the way the email templates expect.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
