package profile

import (
	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// RegisterRoutes wires profile endpoints into the given router group. All
// routes require authentication; the dashboard is instructor-only.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth gin.HandlerFunc, requireRoles func(...types.AccountType) gin.HandlerFunc) {
	profiles := rg.Group("/profile")
	profiles.Use(auth)
	{
		profiles.PUT("", h.UpdateProfile)
		profiles.DELETE("", h.DeleteAccount)
		profiles.GET("", h.GetAllUserDetails)
		profiles.PUT("/picture", h.UpdateDisplayPicture)
		profiles.GET("/courses", h.GetEnrolledCourses)
		profiles.GET("/instructor", requireRoles(types.AccountTypeInstructor), h.InstructorDashboard)
	}
}
