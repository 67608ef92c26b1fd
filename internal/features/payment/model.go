package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/internal/features/course"
	"github.com/studyhub/studyhub-server-go/pkg/pagination"
	"github.com/studyhub/studyhub-server-go/pkg/types"
)

// Payment is the persisted record of a gateway order. A row is written when
// capture creates the order and flipped to captured once the signature
// verifies.
type Payment struct {
	types.BaseModel

	OrderID   string              `gorm:"type:varchar(64);not null;uniqueIndex;column:order_id" json:"orderId"`
	PaymentID *string             `gorm:"type:varchar(64);column:payment_id" json:"paymentId,omitempty"`
	UserID    uuid.UUID           `gorm:"type:uuid;not null;column:user_id;index" json:"userId"`
	Amount    types.Money         `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency  string              `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Receipt   string              `gorm:"type:varchar(64)" json:"receipt"`
	Status    types.PaymentStatus `gorm:"type:varchar(20);not null;default:'created'" json:"status"`
	CourseIDs types.JSON          `gorm:"type:text;column:course_ids" json:"courseIds"`
	Notes     *string             `gorm:"type:text" json:"notes,omitempty"`
}

// TableName overrides the default table name.
func (Payment) TableName() string { return "payments" }

// ListFilters defines payment query filters.
type ListFilters struct {
	UserID   *uuid.UUID
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// ValidateCourses checks every requested course the way capture requires:
// missing course, already-enrolled user and unpriced course each abort the
// whole request. Returns the total price on success.
func ValidateCourses(db *gorm.DB, courseIDs []uuid.UUID, userID uuid.UUID) (types.Money, error) {
	var total types.Money

	for _, courseID := range courseIDs {
		crs, err := course.Get(db, courseID)
		if err != nil {
			return types.Money{}, err
		}

		enrolled, err := course.IsEnrolled(db, courseID, userID)
		if err != nil {
			return types.Money{}, err
		}
		if enrolled {
			return types.Money{}, ErrAlreadyEnrolled
		}

		if crs.Price.IsZero() {
			return types.Money{}, ErrNoPrice
		}

		total = total.Add(crs.Price)
	}

	return total, nil
}

// Record persists a freshly created gateway order.
func Record(db *gorm.DB, orderID, receipt, currency string, amount types.Money, userID uuid.UUID, courseIDs []uuid.UUID) (Payment, error) {
	encoded, err := json.Marshal(courseIDs)
	if err != nil {
		return Payment{}, err
	}

	pmt := Payment{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Receipt:   receipt,
		Status:    types.PaymentStatusCreated,
		CourseIDs: types.JSON(encoded),
	}

	if err := db.Create(&pmt).Error; err != nil {
		return Payment{}, err
	}

	return pmt, nil
}

// MarkCaptured records the gateway payment id and flips the order to
// captured. Unknown orders are ignored: verification of an order created
// elsewhere still succeeds.
func MarkCaptured(db *gorm.DB, orderID, paymentID string, notes string) error {
	updates := map[string]interface{}{
		"payment_id": paymentID,
		"status":     types.PaymentStatusCaptured,
	}
	if notes != "" {
		updates["notes"] = notes
	}

	return db.Model(&Payment{}).Where("order_id = ?", orderID).Updates(updates).Error
}

// Get retrieves a payment by gateway order id.
func Get(db *gorm.DB, orderID string) (Payment, error) {
	var pmt Payment
	if err := db.First(&pmt, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return pmt, ErrPaymentNotFound
		}
		return pmt, err
	}
	return pmt, nil
}

// List retrieves paginated payments with filters, newest first.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Payment, int64, error) {
	query := db.Model(&Payment{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []Payment
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&payments).Error

	return payments, total, err
}
