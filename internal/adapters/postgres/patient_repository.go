package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

type PatientRepository struct {
	q Executor
}

func NewPatientRepository(db *DB) ports.PatientRepository {
	return &PatientRepository{q: db.Pool}
}

func (r *PatientRepository) CreatePatient(ctx context.Context, p *domain.Patient) error {
	query := `INSERT INTO patients (
				patient_id, first_name, last_name, other_names, email, phone, address,
				next_of_kin_name, next_of_kin_phone, next_of_kin_relationship)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		p.PatientID,
		p.FirstName,
		p.LastName,
		p.OtherNames,
		p.Email,
		p.Phone,
		p.Address,
		p.NextOfKinName,
		p.NextOfKinPhone,
		p.NextOfKinRelationship,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if violatedConstraint(err) == "patients_patient_id_key" {
			return domain.NewDuplicateError("patient", p.PatientID)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) FindByPatientID(ctx context.Context, patientID string) (*domain.Patient, error) {
	query := `SELECT id, patient_id, first_name, last_name, other_names, email, phone, address,
				next_of_kin_name, next_of_kin_phone, next_of_kin_relationship, created_at, updated_at
			  FROM patients
			  WHERE patient_id = $1`

	var p domain.Patient
	err := r.q.QueryRow(ctx, query, patientID).Scan(
		&p.ID,
		&p.PatientID,
		&p.FirstName,
		&p.LastName,
		&p.OtherNames,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.NextOfKinName,
		&p.NextOfKinPhone,
		&p.NextOfKinRelationship,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPatientNotFoundError(patientID)
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) ExistsPatientID(ctx context.Context, patientID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE patient_id = $1)`, patientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check patient existence: %w", err)
	}
	return exists, nil
}
