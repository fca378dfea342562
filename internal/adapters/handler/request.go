package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/go-playground/validator"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

type CreatePatientRequest struct {
	FirstName             string `json:"firstName" validate:"required" example:"Ada"`
	LastName              string `json:"lastName" validate:"required" example:"Obi"`
	OtherNames            string `json:"otherNames"`
	Email                 string `json:"email" validate:"omitempty,email"`
	Phone                 string `json:"phone" validate:"omitempty,max=32" example:"+2348030000000"`
	Address               string `json:"address"`
	NextOfKinName         string `json:"nextOfKinName"`
	NextOfKinPhone        string `json:"nextOfKinPhone" validate:"omitempty,max=32"`
	NextOfKinRelationship string `json:"nextOfKinRelationship"`
}

type CreatePaymentRequest struct {
	PatientID     string          `json:"patientId" validate:"required,len=4,numeric" example:"4821"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"2500"`
	Currency      string          `json:"currency" validate:"omitempty,len=3" example:"NGN"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=bank_transfer card_payment opay" example:"bank_transfer"`
	Metadata      map[string]any  `json:"metadata"`
}

type VerifyPaymentRequest struct {
	ReferenceNumber string `json:"referenceNumber" validate:"required" example:"PAY-1741597200000-42"`
	PatientID       string `json:"patientId" validate:"omitempty,len=4,numeric" example:"4821"`
}

type IssueAccessCodeRequest struct {
	TestType         string              `json:"testType" validate:"required,max=128" example:"Full Blood Count"`
	TestDate         *openapi_types.Date `json:"testDate" swaggertype:"string" example:"2026-03-10"`
	ResultData       json.RawMessage     `json:"resultData" swaggertype:"object"`
	PaymentReference string              `json:"paymentReference" example:"PAY-1741597200000-42"`
}

type RedeemRequest struct {
	Code string `json:"code" validate:"required" example:"K7Q2M9XD"`
}

type UpdatePaymentSettingRequest struct {
	AccessCodePrice decimal.Decimal `json:"accessCodePrice" swaggertype:"string" example:"5000"`
	Currency        string          `json:"currency" validate:"required,len=3" example:"NGN"`
	BankName        string          `json:"bankName"`
	AccountName     string          `json:"accountName"`
	AccountNumber   string          `json:"accountNumber"`
	OpayPublicKey   string          `json:"opayPublicKey"`
	OpaySecretKey   string          `json:"opaySecretKey"`
	OpayMerchantID  string          `json:"opayMerchantId"`
	EnableOpay      bool            `json:"enableOpay"`
}

type InitializeGatewayRequest struct {
	PatientID string `json:"patientId" validate:"required,len=4,numeric" example:"4821"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Name      string `json:"name"`
}

type GatewayVerifyRequest struct {
	Reference string `json:"reference" validate:"required" example:"PAY-1741597200000-42"`
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewValidationError("could not read request body")
	}
	return body, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewValidationError("request body is not valid JSON")
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError reports which fields failed and on which rule.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(err.Error())
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	de := domain.NewValidationError("request validation failed")
	de.Details = map[string]any{"fields": fields}
	return de
}

func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || value == "" {
		return "", domain.NewValidationError("invalid path parameter " + name)
	}
	return value, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	var value *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &value); err != nil {
		return 0, domain.NewValidationError("invalid query parameter " + name)
	}
	if value == nil {
		return 0, nil
	}
	return *value, nil
}
