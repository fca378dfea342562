package handler

import (
	"net/http"

	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
)

// HandleCreatePatient registers a patient
// @Summary      Register a patient
// @Description  Creates a patient record under a generated 4-digit patient ID.
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     bearerAuth
// @Param        request  body      CreatePatientRequest  true  "Patient details"
// @Success      201      {object}  APIResponse           "Patient created"
// @Failure      400      {object}  APIResponse           "Invalid request parameters"
// @Failure      401      {object}  APIResponse           "Missing or invalid token"
// @Router       /patients [post]
func (h *Handler) HandleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	patient, err := h.patients.CreatePatient(r.Context(), h.actor(r), service.CreatePatientCommand{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		OtherNames:            req.OtherNames,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Address:               req.Address,
		NextOfKinName:         req.NextOfKinName,
		NextOfKinPhone:        req.NextOfKinPhone,
		NextOfKinRelationship: req.NextOfKinRelationship,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, patient)
}

// HandleGetPatient returns a patient
// @Summary   Get a patient
// @Tags      patients
// @Produce   json
// @Security  bearerAuth
// @Param     id   path      string       true  "Patient ID"
// @Success   200  {object}  APIResponse
// @Failure   404  {object}  APIResponse  "Patient not found"
// @Router    /patients/{id} [get]
func (h *Handler) HandleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	patient, err := h.patients.GetPatient(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, patient)
}

// HandleListPatientPayments lists a patient's payments, newest first
// @Summary   List a patient's payments
// @Tags      patients
// @Produce   json
// @Security  bearerAuth
// @Param     id      path      string  true   "Patient ID"
// @Param     limit   query     int     false  "Page size (default 20, max 100)"
// @Param     offset  query     int     false  "Offset"
// @Success   200     {object}  APIResponse
// @Router    /patients/{id}/payments [get]
func (h *Handler) HandleListPatientPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.fail(w, err)
		return
	}

	payments, err := h.payments.ListPatientPayments(r.Context(), id, limit, offset)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payments)
}

// HandleAccessCodePayment reports whether a code can be issued for a patient
// @Summary   Access code payment status
// @Tags      patients
// @Produce   json
// @Security  bearerAuth
// @Param     id   path      string  true  "Patient ID"
// @Success   200  {object}  APIResponse
// @Router    /patients/{id}/access-code-payment [get]
func (h *Handler) HandleAccessCodePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	status, err := h.payments.AccessCodePaymentStatus(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// HandleIssueAccessCode issues a result access code
// @Summary      Issue a result access code
// @Description  Requires a verified payment for the patient unless the caller is an administrator.
// @Tags         results
// @Accept       json
// @Produce      json
// @Security     bearerAuth
// @Param        id       path      string                  true  "Patient ID"
// @Param        request  body      IssueAccessCodeRequest  true  "Result details"
// @Success      201      {object}  APIResponse             "Code issued"
// @Failure      400      {object}  APIResponse             "Invalid request or payment reference"
// @Failure      402      {object}  APIResponse             "No verified payment"
// @Router       /patients/{id}/access-code [post]
func (h *Handler) HandleIssueAccessCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req IssueAccessCodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	issuance, err := h.accessCode.Issue(r.Context(), h.actor(r), service.IssueAccessCodeCommand{
		PatientID:        id,
		TestType:         req.TestType,
		TestDate:         req.TestDate,
		ResultData:       req.ResultData,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, issuance)
}
