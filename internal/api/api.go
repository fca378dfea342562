// Package api carries the service's OpenAPI document and the schema checks
// derived from it.
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

const webhookSchema = "GatewayWebhook"

// Spec is the loaded and validated API document.
type Spec struct {
	doc     *openapi3.T
	webhook *openapi3.Schema
}

func Load() (*Spec, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	ref, ok := doc.Components.Schemas[webhookSchema]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("openapi document has no %s schema", webhookSchema)
	}

	return &Spec{doc: doc, webhook: ref.Value}, nil
}

// MustLoad panics if the embedded document is broken.
func MustLoad() *Spec {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

const signatureField = "signature"

// ValidateWebhook checks a raw callback body against the GatewayWebhook
// schema. Any violation on the signature field is reported as an invalid
// signature; others name only the field and the rule.
func (s *Spec) ValidateWebhook(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return domain.NewValidationError("webhook body is not valid JSON")
	}
	if _, ok := value.(map[string]any); !ok {
		return domain.NewValidationError("webhook body is not a JSON object")
	}
	if err := s.webhook.VisitJSON(value, openapi3.SchemaErrorDetailsDisabled()); err != nil {
		return webhookError(err)
	}
	return nil
}

func webhookError(err error) *domain.DomainError {
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return domain.NewValidationError("invalid webhook payload")
	}

	path := schemaErr.JSONPointer()
	if len(path) > 0 && path[0] == signatureField {
		return domain.NewInvalidSignatureError()
	}

	de := domain.NewValidationError("invalid webhook payload")
	de.Details = map[string]any{
		"field":  "/" + strings.Join(path, "/"),
		"reason": schemaErr.Reason,
	}
	return de
}

// JSON renders the document.
func (s *Spec) JSON() ([]byte, error) {
	return json.Marshal(s.doc)
}
