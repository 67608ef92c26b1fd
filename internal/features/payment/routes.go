package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// RegisterRoutes wires payment endpoints into the given router group.
// Purchase routes are student-only; the list endpoint is admin-only.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth gin.HandlerFunc, requireRoles func(...types.AccountType) gin.HandlerFunc) {
	payments := rg.Group("/payments")
	payments.Use(auth)
	{
		payments.POST("/capture", requireRoles(types.AccountTypeStudent), h.Capture)
		payments.POST("/verify", requireRoles(types.AccountTypeStudent), h.Verify)
		payments.POST("/success-email", requireRoles(types.AccountTypeStudent), h.SendSuccessEmail)
		payments.GET("", requireRoles(types.AccountTypeAdmin), h.List)
	}
}
