package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyhub/studyhub-server-go/internal/features/course"
	"github.com/studyhub/studyhub-server-go/internal/features/progress"
	"github.com/studyhub/studyhub-server-go/internal/features/user"
	"github.com/studyhub/studyhub-server-go/internal/middleware"
	"github.com/studyhub/studyhub-server-go/pkg/cache"
	"github.com/studyhub/studyhub-server-go/pkg/imagehost"
	"github.com/studyhub/studyhub-server-go/pkg/types"
)

type stubUploader struct {
	lastFolder string
	lastWidth  int
	lastHeight int
	result     imagehost.UploadResult
	err        error
}

func (u *stubUploader) UploadImage(ctx context.Context, file io.Reader, filename, folder string, width, height int) (imagehost.UploadResult, error) {
	u.lastFolder = folder
	u.lastWidth = width
	u.lastHeight = height
	if u.err != nil {
		return imagehost.UploadResult{}, u.err
	}
	return u.result, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&Profile{},
		&course.Course{},
		&course.Section{},
		&course.Subsection{},
		&course.Enrollment{},
		&progress.CourseProgress{},
		&progress.CompletedVideo{},
	))

	return db
}

func setupRouter(db *gorm.DB, uploader Uploader, cacheClient cache.Client, acting user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(db, logger, uploader, cacheClient, "studyhub")

	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetUser(c, middleware.ContextUser{
			ID:          acting.ID,
			Email:       acting.Email,
			FirstName:   acting.FirstName,
			LastName:    acting.LastName,
			AccountType: acting.AccountType,
		})
	})

	api := router.Group("/api/v1")
	RegisterRoutes(api, handler, func(c *gin.Context) { c.Next() }, func(roles ...types.AccountType) gin.HandlerFunc {
		return func(c *gin.Context) { c.Next() }
	})

	return router
}

func createUserWithProfile(t *testing.T, db *gorm.DB, accountType types.AccountType) user.User {
	t.Helper()

	prf, err := Create(db)
	require.NoError(t, err)

	usr, err := user.Create(db, user.CreateInput{
		FirstName:   "Asha",
		LastName:    "Verma",
		Email:       uuid.New().String() + "@example.com",
		Password:    "password123",
		AccountType: accountType,
		ProfileID:   prf.ID,
	})
	require.NoError(t, err)
	return usr
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateProfileBlanksOmittedFields(t *testing.T) {
	db := newTestDB(t)
	usr := createUserWithProfile(t, db, types.AccountTypeStudent)
	router := setupRouter(db, &stubUploader{}, cache.NewMemoryCache(), usr)

	require.NoError(t, Update(db, usr.ProfileID, UpdateInput{
		Gender:        types.GenderFemale,
		DateOfBirth:   "1999-01-01",
		About:         "hello",
		ContactNumber: "9876543210",
	}))

	rec := doJSON(router, http.MethodPut, "/api/v1/profile", gin.H{
		"firstName": "Asha",
		"lastName":  "Verma",
		"about":     "only about survives",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Profile updated successfully", env.Message)

	prf, err := Get(db, usr.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "only about survives", prf.About)
	assert.Empty(t, string(prf.Gender), "omitted fields are cleared")
	assert.Empty(t, prf.DateOfBirth)
	assert.Empty(t, prf.ContactNumber)
}

func TestDeleteAccountCascade(t *testing.T) {
	db := newTestDB(t)
	usr := createUserWithProfile(t, db, types.AccountTypeStudent)
	router := setupRouter(db, &stubUploader{}, cache.NewMemoryCache(), usr)

	crs1 := course.Course{Name: "Go Basics", Price: types.NewMoney(500), InstructorID: uuid.New()}
	crs2 := course.Course{Name: "Advanced Go", Price: types.NewMoney(900), InstructorID: uuid.New()}
	require.NoError(t, db.Create(&crs1).Error)
	require.NoError(t, db.Create(&crs2).Error)

	for _, crs := range []course.Course{crs1, crs2} {
		require.NoError(t, course.AddStudent(db, crs.ID, usr.ID))
		_, err := progress.Create(db, crs.ID, usr.ID)
		require.NoError(t, err)
	}

	rec := doJSON(router, http.MethodDelete, "/api/v1/profile", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "User deleted successfully", env.Message)

	_, err := user.Get(db, usr.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = Get(db, usr.ProfileID)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	ids, err := course.EnrolledCourseIDs(db, usr.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "roster rows removed for every course")

	var progressRows int64
	require.NoError(t, db.Model(&progress.CourseProgress{}).Where("user_id = ?", usr.ID).Count(&progressRows).Error)
	assert.Zero(t, progressRows)
}

func TestGetAllUserDetails(t *testing.T) {
	db := newTestDB(t)
	usr := createUserWithProfile(t, db, types.AccountTypeStudent)
	router := setupRouter(db, &stubUploader{}, cache.NewMemoryCache(), usr)

	require.NoError(t, Update(db, usr.ProfileID, UpdateInput{About: "gopher"}))

	rec := doJSON(router, http.MethodGet, "/api/v1/profile", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "User Data fetched successfully", env.Message)

	var data struct {
		Email             string `json:"email"`
		AdditionalDetails struct {
			About string `json:"about"`
		} `json:"additionalDetails"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, usr.Email, data.Email)
	assert.Equal(t, "gopher", data.AdditionalDetails.About)
}

func TestUpdateDisplayPicture(t *testing.T) {
	db := newTestDB(t)
	usr := createUserWithProfile(t, db, types.AccountTypeStudent)
	uploader := &stubUploader{result: imagehost.UploadResult{SecureURL: "https://cdn.example.com/avatar.png"}}
	router := setupRouter(db, uploader, cache.NewMemoryCache(), usr)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("displayPicture", "avatar.png")
	require.NoError(t, err)
	part.Write([]byte("fake image bytes"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/picture", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Image Updated successfully", env.Message)

	assert.Equal(t, "studyhub", uploader.lastFolder)
	assert.Equal(t, 1000, uploader.lastWidth)
	assert.Equal(t, 1000, uploader.lastHeight)

	stored, err := user.Get(db, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatar.png", stored.Image)
}

func TestGetEnrolledCoursesProgress(t *testing.T) {
	db := newTestDB(t)
	usr := createUserWithProfile(t, db, types.AccountTypeStudent)
	router := setupRouter(db, &stubUploader{}, cache.NewMemoryCache(), usr)

	// Course with four subsections, one completed.
	crs := course.Course{Name: "Go Basics", Price: types.NewMoney(500), InstructorID: uuid.New()}
	require.NoError(t, db.Create(&crs).Error)
	section := course.Section{CourseID: crs.ID, Name: "Intro", Position: 1}
	require.NoError(t, db.Create(&section).Error)

	var subs []course.Subsection
	for i := 0; i < 4; i++ {
		sub := course.Subsection{SectionID: section.ID, Title: "Lesson", TimeDuration: 330, Position: i}
		require.NoError(t, db.Create(&sub).Error)
		subs = append(subs, sub)
	}

	require.NoError(t, course.AddStudent(db, crs.ID, usr.ID))
	record, err := progress.Create(db, crs.ID, usr.ID)
	require.NoError(t, err)
	require.NoError(t, progress.MarkCompleted(db, record.ID, subs[0].ID))

	// Course without subsections counts as fully completed.
	empty := course.Course{Name: "Placeholder", Price: types.NewMoney(100), InstructorID: uuid.New()}
	require.NoError(t, db.Create(&empty).Error)
	require.NoError(t, course.AddStudent(db, empty.ID, usr.ID))
	_, err = progress.Create(db, empty.ID, usr.ID)
	require.NoError(t, err)

	rec := doJSON(router, http.MethodGet, "/api/v1/profile/courses", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var enrolled []struct {
		CourseName         string  `json:"courseName"`
		TotalDuration      string  `json:"totalDuration"`
		ProgressPercentage float64 `json:"progressPercentage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &enrolled))
	require.Len(t, enrolled, 2)

	byName := map[string]struct {
		CourseName         string  `json:"courseName"`
		TotalDuration      string  `json:"totalDuration"`
		ProgressPercentage float64 `json:"progressPercentage"`
	}{}
	for _, item := range enrolled {
		byName[item.CourseName] = item
	}

	assert.Equal(t, 25.0, byName["Go Basics"].ProgressPercentage)
	assert.Equal(t, "22m 0s", byName["Go Basics"].TotalDuration, "4 x 330s")
	assert.Equal(t, 100.0, byName["Placeholder"].ProgressPercentage)
	assert.Equal(t, "0s", byName["Placeholder"].TotalDuration)
}

func TestInstructorDashboard(t *testing.T) {
	db := newTestDB(t)
	instructor := createUserWithProfile(t, db, types.AccountTypeInstructor)
	memCache := cache.NewMemoryCache()
	router := setupRouter(db, &stubUploader{}, memCache, instructor)

	crs := course.Course{Name: "Go Basics", Description: "desc", Price: types.NewMoney(500), InstructorID: instructor.ID}
	require.NoError(t, db.Create(&crs).Error)

	for i := 0; i < 3; i++ {
		require.NoError(t, course.AddStudent(db, crs.ID, uuid.New()))
	}

	rec := doJSON(router, http.MethodGet, "/api/v1/profile/instructor", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var data struct {
		Courses []CourseStats `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Courses, 1)

	stats := data.Courses[0]
	assert.Equal(t, "Go Basics", stats.CourseName)
	assert.Equal(t, int64(3), stats.TotalStudentsEnrolled)
	assert.Equal(t, "1500", stats.TotalAmountGenerated.String(), "3 students x 500")

	// The dashboard is cached; a new enrollment is not visible until expiry.
	require.NoError(t, course.AddStudent(db, crs.ID, uuid.New()))

	rec = doJSON(router, http.MethodGet, "/api/v1/profile/instructor", nil)
	env = decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(3), data.Courses[0].TotalStudentsEnrolled)
}
