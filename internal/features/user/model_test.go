package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	return db
}

func TestCreateHashesPassword(t *testing.T) {
	db := newTestDB(t)

	usr, err := Create(db, CreateInput{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "Asha@Example.com",
		Password:  "password123",
		ProfileID: uuid.New(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, "password123", usr.Password)
	assert.True(t, usr.ComparePassword("password123"))
	assert.False(t, usr.ComparePassword("wrong"))
	assert.Equal(t, "asha@example.com", usr.Email, "email is normalised")
	assert.NotEqual(t, uuid.Nil, usr.ID)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	db := newTestDB(t)

	_, err := Create(db, CreateInput{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "short",
		ProfileID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	input := CreateInput{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "password123",
		ProfileID: uuid.New(),
	}

	_, err := Create(db, input)
	require.NoError(t, err)

	_, err = Create(db, input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateNameOverwritesBothFields(t *testing.T) {
	db := newTestDB(t)

	usr, err := Create(db, CreateInput{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.com",
		Password:  "password123",
		ProfileID: uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, UpdateName(db, usr.ID, "Priya", ""))

	stored, err := Get(db, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priya", stored.FirstName)
	assert.Empty(t, stored.LastName, "empty values overwrite, not preserve")
	assert.Equal(t, "Priya", stored.FullName())
}

func TestDeleteMissingUser(t *testing.T) {
	db := newTestDB(t)

	err := Delete(db, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
