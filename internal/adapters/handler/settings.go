package handler

import (
	"net/http"

	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
)

// HandleGetSettings returns the payment settings
// @Summary      Payment settings
// @Description  Administrators see gateway credentials; other staff get the redacted view.
// @Tags         settings
// @Produce      json
// @Security     bearerAuth
// @Success      200  {object}  APIResponse
// @Router       /settings/payment [get]
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.settings.View(r.Context(), h.actor(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// HandlePublicSettings returns pricing and bank details
// @Summary  Public payment settings
// @Tags     settings
// @Produce  json
// @Success  200  {object}  APIResponse
// @Router   /settings/payment/public [get]
func (h *Handler) HandlePublicSettings(w http.ResponseWriter, r *http.Request) {
	public, err := h.settings.Public(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, public)
}

// HandleUpdateSettings replaces the active payment settings
// @Summary      Update payment settings
// @Description  Gateway keys left empty keep their stored values.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     bearerAuth
// @Param        request  body      UpdatePaymentSettingRequest  true  "New settings"
// @Success      200      {object}  APIResponse
// @Failure      403      {object}  APIResponse                  "Administrators only"
// @Router       /settings/payment [put]
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentSettingRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	setting, err := h.settings.Update(r.Context(), h.actor(r), service.UpdateSettingsCommand{
		AccessCodePrice: req.AccessCodePrice,
		Currency:        req.Currency,
		BankName:        req.BankName,
		AccountName:     req.AccountName,
		AccountNumber:   req.AccountNumber,
		OpayPublicKey:   req.OpayPublicKey,
		OpaySecretKey:   req.OpaySecretKey,
		OpayMerchantID:  req.OpayMerchantID,
		EnableOpay:      req.EnableOpay,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, setting)
}
