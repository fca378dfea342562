package handler

import "net/http"

// HandleRedeem redeems an access code
// @Summary      Redeem an access code
// @Description  Public and rate limited per caller. Returns the result unlocked by the code.
// @Tags         results
// @Accept       json
// @Produce      json
// @Param        request  body      RedeemRequest  true  "Access code"
// @Success      200      {object}  APIResponse
// @Failure      404      {object}  APIResponse    "Invalid code"
// @Failure      410      {object}  APIResponse    "Code expired"
// @Failure      429      {object}  APIResponse    "Too many attempts"
// @Router       /results/access [post]
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.results.Redeem(r.Context(), req.Code, h.clientIP(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	if h.opts.CountAccess {
		if _, err := h.results.RecordAccess(r.Context(), result.AccessCode); err != nil {
			h.logger.Warn("failed to record result access", "error", err)
		}
	}

	respondWithJSON(w, http.StatusOK, result)
}

// HandleRecordAccess increments the access counter of a code
// @Summary   Record a result access
// @Tags      results
// @Produce   json
// @Security  bearerAuth
// @Param     code  path      string       true  "Access code"
// @Success   200   {object}  APIResponse
// @Failure   404   {object}  APIResponse  "Invalid code"
// @Router    /results/{code}/access-count [post]
func (h *Handler) HandleRecordAccess(w http.ResponseWriter, r *http.Request) {
	code, err := pathParam(r, "code")
	if err != nil {
		h.fail(w, err)
		return
	}

	count, err := h.results.RecordAccess(r.Context(), code)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"accessCount": count})
}
