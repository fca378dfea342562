// Package handler is the HTTP surface of the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/handler/middleware"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
	"github.com/go-playground/validator"
)

type PatientService interface {
	CreatePatient(ctx context.Context, actor domain.Actor, cmd service.CreatePatientCommand) (*domain.Patient, error)
	GetPatient(ctx context.Context, patientID string) (*domain.Patient, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, actor domain.Actor, cmd service.CreatePaymentCommand) (*domain.Payment, error)
	VerifyPayment(ctx context.Context, actor domain.Actor, cmd service.VerifyPaymentCommand) (*domain.Payment, error)
	GetPayment(ctx context.Context, reference string) (*domain.Payment, error)
	ListPatientPayments(ctx context.Context, patientID string, limit, offset int) ([]*domain.Payment, error)
	AccessCodePaymentStatus(ctx context.Context, patientID string) (*service.AccessCodePaymentStatus, error)
	ProcessWebhook(ctx context.Context, body []byte, ip string) (*domain.Payment, error)
	VerifyWithGateway(ctx context.Context, actor domain.Actor, reference string) (*domain.Payment, error)
	InitializeGatewayPayment(ctx context.Context, cmd service.InitializeGatewayCommand, ip string) (*domain.GatewayPayment, error)
}

type AccessCodeService interface {
	Issue(ctx context.Context, actor domain.Actor, cmd service.IssueAccessCodeCommand) (*domain.Issuance, error)
}

type ResultRegistry interface {
	Redeem(ctx context.Context, code, identity string) (*domain.Result, error)
	RecordAccess(ctx context.Context, code string) (int, error)
}

type SettingsService interface {
	View(ctx context.Context, actor domain.Actor) (any, error)
	Public(ctx context.Context) (domain.PublicPaymentSetting, error)
	Update(ctx context.Context, actor domain.Actor, cmd service.UpdateSettingsCommand) (*domain.PaymentSetting, error)
}

type Services struct {
	Patients   PatientService
	Payments   PaymentService
	AccessCode AccessCodeService
	Results    ResultRegistry
	Settings   SettingsService
}

type Options struct {
	TrustProxy  bool
	CountAccess bool
}

type Handler struct {
	patients   PatientService
	payments   PaymentService
	accessCode AccessCodeService
	results    ResultRegistry
	settings   SettingsService
	auth       *middleware.Authenticator
	validate   *validator.Validate
	logger     *slog.Logger
	opts       Options
}

func NewHandler(svc Services, auth *middleware.Authenticator, logger *slog.Logger, opts Options) *Handler {
	return &Handler{
		patients:   svc.Patients,
		payments:   svc.Payments,
		accessCode: svc.AccessCode,
		results:    svc.Results,
		settings:   svc.Settings,
		auth:       auth,
		validate:   validator.New(),
		logger:     logger,
		opts:       opts,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	staff := h.auth.Require(domain.RoleAdmin, domain.RoleEDEC)
	admin := h.auth.Require(domain.RoleAdmin)

	mux.HandleFunc("GET /healthz", h.HandleHealth)

	mux.Handle("POST /patients", staff(http.HandlerFunc(h.HandleCreatePatient)))
	mux.Handle("GET /patients/{id}", staff(http.HandlerFunc(h.HandleGetPatient)))
	mux.Handle("GET /patients/{id}/payments", staff(http.HandlerFunc(h.HandleListPatientPayments)))
	mux.Handle("GET /patients/{id}/access-code-payment", staff(http.HandlerFunc(h.HandleAccessCodePayment)))
	mux.Handle("POST /patients/{id}/access-code", staff(http.HandlerFunc(h.HandleIssueAccessCode)))

	mux.Handle("POST /payments", staff(http.HandlerFunc(h.HandleCreatePayment)))
	mux.Handle("POST /payments/verify", staff(http.HandlerFunc(h.HandleVerifyPayment)))
	mux.Handle("GET /payments/{reference}", staff(http.HandlerFunc(h.HandleGetPayment)))

	mux.HandleFunc("POST /results/access", h.HandleRedeem)
	mux.Handle("POST /results/{code}/access-count", staff(http.HandlerFunc(h.HandleRecordAccess)))

	mux.Handle("GET /settings/payment", staff(http.HandlerFunc(h.HandleGetSettings)))
	mux.Handle("PUT /settings/payment", admin(http.HandlerFunc(h.HandleUpdateSettings)))
	mux.HandleFunc("GET /settings/payment/public", h.HandlePublicSettings)

	mux.HandleFunc("POST /gateway/initialize", h.HandleInitializeGateway)
	mux.HandleFunc("POST /gateway/webhook", h.HandleWebhook)
	mux.Handle("POST /gateway/verify", staff(http.HandlerFunc(h.HandleGatewayVerify)))
}

// HandleHealth is the liveness probe
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  APIResponse
// @Router   /healthz [get]
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) actor(r *http.Request) domain.Actor {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor
}

func (h *Handler) clientIP(r *http.Request) string {
	return middleware.ClientIP(r, h.opts.TrustProxy)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	respondWithError(w, h.logger, err)
}
