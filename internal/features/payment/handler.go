package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/internal/features/course"
	"github.com/studyhub/studyhub-server-go/internal/features/enrollment"
	"github.com/studyhub/studyhub-server-go/internal/features/user"
	"github.com/studyhub/studyhub-server-go/internal/middleware"
	"github.com/studyhub/studyhub-server-go/pkg/metrics"
	"github.com/studyhub/studyhub-server-go/pkg/pagination"
	"github.com/studyhub/studyhub-server-go/pkg/razorpay"
	"github.com/studyhub/studyhub-server-go/pkg/request"
	"github.com/studyhub/studyhub-server-go/pkg/response"
)

// Gateway is the slice of the payment gateway the handler needs.
type Gateway interface {
	CreateOrder(ctx context.Context, input razorpay.OrderRequest) (razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Mailer sends the payment confirmation email.
type Mailer interface {
	SendPaymentSuccess(to, studentName string, amount float64, orderID, paymentID string) error
}

// Handler processes payment HTTP requests.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	gateway  Gateway
	mailer   Mailer
	enroller *enrollment.Service
}

// NewHandler constructs a payment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, gateway Gateway, mailer Mailer, enroller *enrollment.Service) *Handler {
	return &Handler{db: db, logger: logger, gateway: gateway, mailer: mailer, enroller: enroller}
}

// Capture validates the requested courses, totals their prices and creates a
// gateway order for the amount in paise. The first failing course aborts the
// whole request and no order is created.
func (h *Handler) Capture(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		Courses []string `json:"courses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Courses) == 0 {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide Course IDs", ErrNoCourses)
		return
	}

	courseIDs, err := parseCourseIDs(req.Courses)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Please provide valid Course IDs", err)
		return
	}

	total, err := ValidateCourses(h.db, courseIDs, usr.ID)
	if err != nil {
		h.respondCaptureError(c, err)
		return
	}

	encodedCourses, _ := json.Marshal(req.Courses)
	order, err := h.gateway.CreateOrder(c.Request.Context(), razorpay.OrderRequest{
		Amount:   total.MinorUnits(),
		Currency: "INR",
		Receipt:  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
		Notes: map[string]string{
			"userId":  usr.ID.String(),
			"courses": string(encodedCourses),
		},
	})
	metrics.ObserveGatewayOrder(err == nil)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not initiate order", err)
		return
	}

	if _, err := Record(h.db, order.ID, order.Receipt, order.Currency, total, usr.ID, courseIDs); err != nil {
		// The gateway order exists either way; keep going but leave a trace.
		h.logger.ErrorContext(c.Request.Context(), "failed to record payment",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	h.logger.InfoContext(c.Request.Context(), "gateway order created",
		slog.String("order_id", order.ID),
		slog.Int64("amount", order.Amount),
	)

	response.OK(c, order, "")
}

// Verify recomputes the gateway signature over order|payment and, when it
// matches, enrolls the student into the purchased courses. Per-course
// enrollment failures are reported in the response data but never fail the
// verification.
func (h *Handler) Verify(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		OrderID   string   `json:"razorpay_order_id"`
		PaymentID string   `json:"razorpay_payment_id"`
		Signature string   `json:"razorpay_signature"`
		Courses   []string `json:"courses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Payment verification failed", err)
		return
	}

	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" || len(req.Courses) == 0 {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Payment verification failed", ErrMissingFields)
		return
	}

	courseIDs, err := parseCourseIDs(req.Courses)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Payment verification failed", err)
		return
	}

	if !h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid signature", ErrInvalidSignature)
		return
	}

	results := h.enroller.EnrollStudents(c.Request.Context(), courseIDs, usr.ID)

	notes, _ := json.Marshal(results)
	if err := MarkCaptured(h.db, req.OrderID, req.PaymentID, string(notes)); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to mark payment captured",
			slog.String("order_id", req.OrderID),
			slog.String("error", err.Error()),
		)
	}

	response.OK(c, results, "Payment Verified")
}

// SendSuccessEmail emails the payment confirmation. The posted amount is in
// paise; the email shows major units.
func (h *Handler) SendSuccessEmail(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Amount    int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" || req.PaymentID == "" || req.Amount == 0 {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Missing payment details", ErrMissingFields)
		return
	}

	student, err := user.Get(h.db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "User not found", err)
		return
	}

	amount := float64(req.Amount) / 100
	if err := h.mailer.SendPaymentSuccess(student.Email, student.FullName(), amount, req.OrderID, req.PaymentID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Could not send email", err)
		return
	}

	response.OK(c, nil, "Email sent successfully")
}

// List returns paginated payment records with filters (admin only).
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{Status: c.Query("status")}

	if userID := c.Query("user"); userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
			return
		}
		filters.UserID = &parsed
	}

	dateFrom, err := request.ParseRFC3339Ptr(c.Query("dateFrom"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid dateFrom format", err)
		return
	}
	filters.DateFrom = dateFrom

	dateTo, err := request.ParseRFC3339Ptr(c.Query("dateTo"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid dateTo format", err)
		return
	}
	filters.DateTo = dateTo

	payments, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, payments, "", pagination.MetadataFrom(total, params))
}

func (h *Handler) respondCaptureError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Could not capture payment"

	switch err {
	case course.ErrCourseNotFound:
		status = http.StatusNotFound
		message = "Course not found"
	case ErrAlreadyEnrolled:
		status = http.StatusBadRequest
		message = "Already Enrolled in a course"
	case ErrNoPrice:
		status = http.StatusBadRequest
		message = "Course has no price"
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

func parseCourseIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid course id %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
