package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/judychuepursuit/change-4-change-back/internal/http/middleware"
	"github.com/judychuepursuit/change-4-change-back/internal/http/validation"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/payments"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

type DonationsHandler struct {
	Intake *payments.Service
}

func NewDonationsHandler(svc *payments.Service) *DonationsHandler {
	return &DonationsHandler{Intake: svc}
}

type donationInput struct {
	Amount            float64 `json:"amount" binding:"required,gt=0"`
	Currency          string  `json:"currency" binding:"required,len=3"`
	CharityID         int64   `json:"charityId" binding:"omitempty,gt=0"`
	CharityName       string  `json:"charityName" binding:"omitempty,max=255"`
	PaymentMethodID   string  `json:"paymentMethodId" binding:"required,max=128"`
	Email             string  `json:"email" binding:"required,email,max=255"`
	DonationFrequency string  `json:"donationFrequency" binding:"required,oneof=one-time monthly"`
	FirstName         string  `json:"firstName" binding:"required,max=100"`
	LastName          string  `json:"lastName" binding:"required,max=100"`
}

// POST /create-payment-intent
// Validation rejects before any processor call; the orchestrator owns the
// rest of the sequence.
func (h *DonationsHandler) Create(c *gin.Context) {
	var in donationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid donation request.", errs))
		return
	}
	if in.CharityID <= 0 && in.CharityName == "" {
		middleware.Fail(c, apperr.InvalidErr("Invalid donation request.", map[string]string{
			"charityId": "A charity is required.",
		}))
		return
	}

	result, err := h.Intake.Donate(c.Request.Context(), payments.DonationInput{
		Amount:          decimal.NewFromFloat(in.Amount),
		Currency:        in.Currency,
		CharityID:       in.CharityID,
		CharityName:     in.CharityName,
		PaymentMethodID: in.PaymentMethodID,
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Frequency:       in.DonationFrequency,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	body := gin.H{
		"clientSecret": result.ClientSecret,
		"status":       result.Status,
	}
	if result.NotificationFailed {
		// funds moved; the caller must not read this as a payment failure
		body["warning"] = "Payment succeeded, but the receipt notification failed."
	}
	c.JSON(http.StatusOK, body)
}
