package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyhub/studyhub-server-go/internal/features/user"
	"github.com/studyhub/studyhub-server-go/internal/utils/jwt"
	"github.com/studyhub/studyhub-server-go/pkg/types"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}))
	return db
}

func createAccount(t *testing.T, db *gorm.DB, accountType types.AccountType) user.User {
	t.Helper()

	usr, err := user.Create(db, user.CreateInput{
		FirstName:   "Asha",
		LastName:    "Verma",
		Email:       uuid.New().String() + "@example.com",
		Password:    "password123",
		AccountType: accountType,
		ProfileID:   uuid.New(),
	})
	require.NoError(t, err)
	return usr
}

func setupRouter(db *gorm.DB, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handlers := append([]gin.HandlerFunc{Authenticate(db, testSecret)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		usr, _ := GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": usr.Email})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateLoadsUser(t *testing.T) {
	db := newTestDB(t)
	usr := createAccount(t, db, types.AccountTypeStudent)
	router := setupRouter(db)

	token, err := jwt.GenerateAccessToken(testSecret, usr.ID, usr.Email, usr.AccountType, time.Hour)
	require.NoError(t, err)

	rec := doRequest(router, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usr.Email)
}

func TestAuthenticateMissingToken(t *testing.T) {
	db := newTestDB(t)
	router := setupRouter(db)

	rec := doRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is missing")
}

func TestAuthenticateRejectsDeletedAccount(t *testing.T) {
	db := newTestDB(t)
	usr := createAccount(t, db, types.AccountTypeStudent)
	router := setupRouter(db)

	token, err := jwt.GenerateAccessToken(testSecret, usr.ID, usr.Email, usr.AccountType, time.Hour)
	require.NoError(t, err)

	require.NoError(t, user.Delete(db, usr.ID))

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateReadsCookie(t *testing.T) {
	db := newTestDB(t)
	usr := createAccount(t, db, types.AccountTypeStudent)
	router := setupRouter(db)

	token, err := jwt.GenerateAccessToken(testSecret, usr.ID, usr.Email, usr.AccountType, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	db := newTestDB(t)
	student := createAccount(t, db, types.AccountTypeStudent)
	instructor := createAccount(t, db, types.AccountTypeInstructor)
	router := setupRouter(db, RequireRoles(types.AccountTypeInstructor))

	studentToken, err := jwt.GenerateAccessToken(testSecret, student.ID, student.Email, student.AccountType, time.Hour)
	require.NoError(t, err)
	instructorToken, err := jwt.GenerateAccessToken(testSecret, instructor.ID, instructor.Email, instructor.AccountType, time.Hour)
	require.NoError(t, err)

	rec := doRequest(router, studentToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, instructorToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}
