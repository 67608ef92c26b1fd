package profile

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/internal/features/course"
	"github.com/studyhub/studyhub-server-go/internal/features/progress"
	"github.com/studyhub/studyhub-server-go/internal/features/user"
	"github.com/studyhub/studyhub-server-go/internal/middleware"
	"github.com/studyhub/studyhub-server-go/pkg/cache"
	"github.com/studyhub/studyhub-server-go/pkg/imagehost"
	"github.com/studyhub/studyhub-server-go/pkg/response"
	"github.com/studyhub/studyhub-server-go/pkg/types"
)

const (
	displayPictureSize = 1000
	dashboardCacheTTL  = 5 * time.Minute
)

// Uploader is the slice of the image host client the handler needs.
type Uploader interface {
	UploadImage(ctx context.Context, file io.Reader, filename, folder string, width, height int) (imagehost.UploadResult, error)
}

// Handler processes profile HTTP requests.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	uploader Uploader
	cache    cache.Client
	folder   string
}

// NewHandler constructs a profile handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, uploader Uploader, cacheClient cache.Client, folder string) *Handler {
	return &Handler{db: db, logger: logger, uploader: uploader, cache: cacheClient, folder: folder}
}

// userDetails is the composed user + profile payload the profile endpoints
// return, mirroring the populated additionalDetails shape.
type userDetails struct {
	user.User
	AdditionalDetails Profile `json:"additionalDetails"`
}

// EnrolledCourse decorates a course with the viewer's progress.
type EnrolledCourse struct {
	course.Course
	TotalDuration      string  `json:"totalDuration"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// CourseStats is one row of the instructor dashboard.
type CourseStats struct {
	ID                    string      `json:"id"`
	CourseName            string      `json:"courseName"`
	CourseDescription     string      `json:"courseDescription"`
	TotalStudentsEnrolled int64       `json:"totalStudentsEnrolled"`
	TotalAmountGenerated  types.Money `json:"totalAmountGenerated"`
}

// UpdateProfile overwrites the user's name and every profile field. Fields the
// client omits are cleared rather than preserved.
func (h *Handler) UpdateProfile(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		FirstName     string       `json:"firstName"`
		LastName      string       `json:"lastName"`
		DateOfBirth   string       `json:"dateOfBirth"`
		About         string       `json:"about"`
		ContactNumber string       `json:"contactNumber"`
		Gender        types.Gender `json:"gender"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	account, err := user.Get(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "User not found", err)
		return
	}

	if err := user.UpdateName(h.db, account.ID, req.FirstName, req.LastName); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not update profile", err)
		return
	}

	if err := Update(h.db, account.ProfileID, UpdateInput{
		Gender:        req.Gender,
		DateOfBirth:   req.DateOfBirth,
		About:         req.About,
		ContactNumber: req.ContactNumber,
	}); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not update profile", err)
		return
	}

	details, err := h.loadUserDetails(account.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not update profile", err)
		return
	}

	response.OK(c, gin.H{"updatedUserDetails": details}, "Profile updated successfully")
}

// DeleteAccount removes the user and everything hanging off the account:
// profile, roster memberships and progress records. The steps run in order
// with no transaction, matching the legacy cascade.
func (h *Handler) DeleteAccount(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	account, err := user.Get(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "User not found", err)
		return
	}

	if err := Delete(h.db, account.ProfileID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "User Cannot be deleted successfully", err)
		return
	}

	courseIDs, err := course.EnrolledCourseIDs(h.db, account.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "User Cannot be deleted successfully", err)
		return
	}
	for _, courseID := range courseIDs {
		if err := course.RemoveStudent(h.db, courseID, account.ID); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "User Cannot be deleted successfully", err)
			return
		}
	}

	if err := user.Delete(h.db, account.ID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "User Cannot be deleted successfully", err)
		return
	}

	if err := progress.DeleteForUser(h.db, account.ID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "User Cannot be deleted successfully", err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "account deleted",
		slog.String("user_id", account.ID.String()),
	)

	response.OK(c, nil, "User deleted successfully")
}

// GetAllUserDetails returns the user with the attached profile.
func (h *Handler) GetAllUserDetails(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	details, err := h.loadUserDetails(usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "User not found", err)
		return
	}

	response.OK(c, details, "User Data fetched successfully")
}

// UpdateDisplayPicture uploads the posted image to the image host and stores
// the hosted URL on the user.
func (h *Handler) UpdateDisplayPicture(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	fileHeader, err := c.FormFile("displayPicture")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "No display picture provided", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Could not read display picture", err)
		return
	}
	defer file.Close()

	result, err := h.uploader.UploadImage(c.Request.Context(), file, fileHeader.Filename, h.folder, displayPictureSize, displayPictureSize)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not upload image", err)
		return
	}

	if err := user.SetImage(h.db, usr.ID, result.SecureURL); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not update image", err)
		return
	}

	account, err := user.Get(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not update image", err)
		return
	}

	response.OK(c, account, "Image Updated successfully")
}

// GetEnrolledCourses lists the viewer's courses with total duration and
// completion percentage. A course without subsections counts as fully
// completed.
func (h *Handler) GetEnrolledCourses(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	courses, err := course.ListEnrolledWithContent(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not fetch enrolled courses", err)
		return
	}

	enrolled := make([]EnrolledCourse, 0, len(courses))
	for _, crs := range courses {
		item := EnrolledCourse{
			Course:        crs,
			TotalDuration: FormatDuration(crs.TotalDurationSeconds()),
		}

		totalSubsections := crs.SubsectionCount()
		if totalSubsections == 0 {
			item.ProgressPercentage = 100
		} else {
			completed, err := progress.CompletedCount(h.db, crs.ID, usr.ID)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not fetch enrolled courses", err)
				return
			}
			item.ProgressPercentage = round2(float64(completed) / float64(totalSubsections) * 100)
		}

		enrolled = append(enrolled, item)
	}

	response.OK(c, enrolled, "")
}

// InstructorDashboard returns per-course enrollment counts and revenue for
// the instructor's own courses. Revenue is roster size times current price.
// Results are cached briefly since the dashboard polls.
func (h *Handler) InstructorDashboard(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	cacheKey := "instructor_dashboard:" + usr.ID.String()

	var cached []CourseStats
	if err := h.cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil {
		response.OK(c, gin.H{"courses": cached}, "")
		return
	}

	courses, err := course.ListByInstructor(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not fetch dashboard", err)
		return
	}

	stats := make([]CourseStats, 0, len(courses))
	for _, crs := range courses {
		count, err := course.EnrolledCount(h.db, crs.ID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not fetch dashboard", err)
			return
		}

		stats = append(stats, CourseStats{
			ID:                    crs.ID.String(),
			CourseName:            crs.Name,
			CourseDescription:     crs.Description,
			TotalStudentsEnrolled: count,
			TotalAmountGenerated:  crs.Price.Mul(count),
		})
	}

	if err := h.cache.SetJSON(c.Request.Context(), cacheKey, stats, dashboardCacheTTL); err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to cache dashboard",
			slog.String("error", err.Error()),
		)
	}

	response.OK(c, gin.H{"courses": stats}, "")
}

func (h *Handler) loadUserDetails(id uuid.UUID) (userDetails, error) {
	account, err := user.Get(h.db, id)
	if err != nil {
		return userDetails{}, err
	}

	prf, err := Get(h.db, account.ProfileID)
	if err != nil {
		return userDetails{}, err
	}

	return userDetails{User: account, AdditionalDetails: prf}, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
