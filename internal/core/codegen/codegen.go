// Package codegen produces patient identifiers, access codes and payment
// references, and allocates them against a uniqueness constraint.
package codegen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

const (
	// AccessCodeAlphabet is the 36-symbol alphabet access codes are drawn from.
	AccessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	AccessCodeLength   = 8

	patientIDMin = 1000
	patientIDMax = 9999

	referenceSuffixMax = 999

	DefaultMaxAttempts = 50
)

// ExistsFunc reports whether a candidate value is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// InsertFunc persists a candidate. It must return a DomainError with code
// DUPLICATE when a uniqueness constraint rejects the value.
type InsertFunc func(ctx context.Context, candidate string) error

// Generator draws identifiers from a random source.
type Generator struct {
	rand        io.Reader
	maxAttempts int
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		rand:        rand.Reader,
		maxAttempts: maxAttempts,
	}
}

// NewGeneratorWithSource is used by tests that need a deterministic source.
func NewGeneratorWithSource(src io.Reader, maxAttempts int) *Generator {
	g := NewGenerator(maxAttempts)
	g.rand = src
	return g
}

// PatientID returns a 4-digit numeric string in [1000, 9999].
func (g *Generator) PatientID() (string, error) {
	n, err := g.intn(patientIDMax - patientIDMin + 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", patientIDMin+n), nil
}

// AccessCode returns an 8-character code over AccessCodeAlphabet.
func (g *Generator) AccessCode() (string, error) {
	code := make([]byte, AccessCodeLength)
	for i := range code {
		n, err := g.intn(len(AccessCodeAlphabet))
		if err != nil {
			return "", err
		}
		code[i] = AccessCodeAlphabet[n]
	}
	return string(code), nil
}

// PaymentReference returns a reference in the PAY-<unixMillis>-<0..999> shape.
func (g *Generator) PaymentReference(now time.Time) (string, error) {
	n, err := g.intn(referenceSuffixMax + 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%d-%d", now.UnixMilli(), n), nil
}

// Allocate draws candidates from next until insert accepts one. Candidates
// the exists oracle reports as taken are skipped without an insert; a
// uniqueness violation on insert is treated the same way, so the storage
// constraint is what finally decides.
func (g *Generator) Allocate(ctx context.Context, kind string, next func() (string, error), exists ExistsFunc, insert InsertFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate, err := next()
		if err != nil {
			return "", fmt.Errorf("generate %s: %w", kind, err)
		}

		if exists != nil {
			taken, err := exists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("check %s existence: %w", kind, err)
			}
			if taken {
				continue
			}
		}

		err = insert(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if domain.IsErrorCode(err, domain.ErrCodeDuplicate) {
			continue
		}
		return "", err
	}

	return "", domain.NewCodeSpaceExhaustedError(kind, g.maxAttempts)
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random source: %w", err)
	}
	return int(v.Int64()), nil
}
