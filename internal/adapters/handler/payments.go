package handler

import (
	"net/http"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
)

// HandleCreatePayment records a claimed payment
// @Summary      Record a payment
// @Description  Records a pending payment under a generated PAY-<millis>-<n> reference.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     bearerAuth
// @Param        request  body      CreatePaymentRequest  true  "Payment details"
// @Success      201      {object}  APIResponse           "Payment recorded"
// @Failure      400      {object}  APIResponse           "Invalid request parameters"
// @Failure      404      {object}  APIResponse           "Patient not found"
// @Router       /payments [post]
func (h *Handler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	payment, err := h.payments.CreatePayment(r.Context(), h.actor(r), service.CreatePaymentCommand{
		PatientID:     req.PatientID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Metadata:      req.Metadata,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, payment)
}

// HandleVerifyPayment manually verifies a payment
// @Summary      Verify a payment
// @Description  Marks a payment verified. Verifying an already verified payment returns it unchanged.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     bearerAuth
// @Param        request  body      VerifyPaymentRequest  true  "Payment reference"
// @Success      200      {object}  APIResponse           "Payment verified"
// @Failure      403      {object}  APIResponse           "Payment belongs to another patient"
// @Failure      404      {object}  APIResponse           "Payment not found"
// @Router       /payments/verify [post]
func (h *Handler) HandleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	payment, err := h.payments.VerifyPayment(r.Context(), h.actor(r), service.VerifyPaymentCommand{
		ReferenceNumber: req.ReferenceNumber,
		PatientID:       req.PatientID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payment)
}

// HandleGetPayment returns a payment by reference
// @Summary   Get a payment
// @Tags      payments
// @Produce   json
// @Security  bearerAuth
// @Param     reference  path      string       true  "Payment reference"
// @Success   200        {object}  APIResponse
// @Failure   404        {object}  APIResponse  "Payment not found"
// @Router    /payments/{reference} [get]
func (h *Handler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	reference, err := pathParam(r, "reference")
	if err != nil {
		h.fail(w, err)
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), reference)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payment)
}
