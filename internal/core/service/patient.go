package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/DanielPopoola/labresult-gateway/internal/core/codegen"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
)

type CreatePatientCommand struct {
	FirstName             string
	LastName              string
	OtherNames            string
	Email                 string
	Phone                 string
	Address               string
	NextOfKinName         string
	NextOfKinPhone        string
	NextOfKinRelationship string
}

type PatientService struct {
	repo     ports.PatientRepository
	codes    *codegen.Generator
	recorder *Recorder
}

func NewPatientService(repo ports.PatientRepository, codes *codegen.Generator, recorder *Recorder) *PatientService {
	return &PatientService{
		repo:     repo,
		codes:    codes,
		recorder: recorder,
	}
}

// CreatePatient registers a patient under a freshly allocated 4-digit ID.
func (s *PatientService) CreatePatient(ctx context.Context, actor domain.Actor, cmd CreatePatientCommand) (*domain.Patient, error) {
	if strings.TrimSpace(cmd.FirstName) == "" || strings.TrimSpace(cmd.LastName) == "" {
		return nil, domain.NewValidationError("first name and last name are required")
	}

	var created *domain.Patient
	_, err := s.codes.Allocate(ctx, "patient ID", s.codes.PatientID, s.repo.ExistsPatientID,
		func(ctx context.Context, candidate string) error {
			p := &domain.Patient{
				PatientID:             candidate,
				FirstName:             strings.TrimSpace(cmd.FirstName),
				LastName:              strings.TrimSpace(cmd.LastName),
				OtherNames:            cmd.OtherNames,
				Email:                 cmd.Email,
				Phone:                 cmd.Phone,
				Address:               cmd.Address,
				NextOfKinName:         cmd.NextOfKinName,
				NextOfKinPhone:        cmd.NextOfKinPhone,
				NextOfKinRelationship: cmd.NextOfKinRelationship,
			}
			if err := s.repo.CreatePatient(ctx, p); err != nil {
				return err
			}
			created = p
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.recorder.Audit(ctx, actor, domain.ActionPatientCreated, domain.EntityPatient, created.PatientID, map[string]any{
		"name": created.FullName(),
	})

	return created, nil
}

func (s *PatientService) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	return s.repo.FindByPatientID(ctx, patientID)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
