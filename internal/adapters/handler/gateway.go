package handler

import (
	"net/http"

	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
)

type webhookAck struct {
	Received  bool   `json:"received"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// HandleInitializeGateway opens a hosted cashier session
// @Summary      Start an online payment
// @Description  Records a pending payment at the current access code price and returns the cashier URL.
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Param        request  body      InitializeGatewayRequest  true  "Payer details"
// @Success      200      {object}  APIResponse
// @Failure      409      {object}  APIResponse               "Online payments disabled"
// @Failure      500      {object}  APIResponse               "Gateway failure"
// @Router       /gateway/initialize [post]
func (h *Handler) HandleInitializeGateway(w http.ResponseWriter, r *http.Request) {
	var req InitializeGatewayRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	gp, err := h.payments.InitializeGatewayPayment(r.Context(), service.InitializeGatewayCommand{
		PatientID: req.PatientID,
		Email:     req.Email,
		Phone:     req.Phone,
		Name:      req.Name,
	}, h.clientIP(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, gp)
}

// HandleWebhook receives gateway payment notifications
// @Summary      Gateway webhook
// @Description  Signed with HMAC-SHA512 over the canonical payload. Signature failures return 400 without detail.
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIResponse  "Invalid payload or signature"
// @Router       /gateway/webhook [post]
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	payment, err := h.payments.ProcessWebhook(r.Context(), body, h.clientIP(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, webhookAck{
		Received:  true,
		Reference: payment.ReferenceNumber,
		Status:    string(payment.Status),
	})
}

// HandleGatewayVerify asks the gateway for a payment's status
// @Summary   Reconcile with the gateway
// @Tags      gateway
// @Accept    json
// @Produce   json
// @Security  bearerAuth
// @Param     request  body      GatewayVerifyRequest  true  "Payment reference"
// @Success   200      {object}  APIResponse
// @Failure   500      {object}  APIResponse           "Gateway failure"
// @Router    /gateway/verify [post]
func (h *Handler) HandleGatewayVerify(w http.ResponseWriter, r *http.Request) {
	var req GatewayVerifyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	payment, err := h.payments.VerifyWithGateway(r.Context(), h.actor(r), req.Reference)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payment)
}
