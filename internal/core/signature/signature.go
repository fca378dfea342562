// Package signature authenticates payment gateway callbacks with HMAC-SHA512
// over a canonical JSON form of the payload.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Field is the payload key carrying the signature.
const Field = "signature"

// Canonicalize serializes payload with the signature field removed and keys
// sorted at every level. HTML escaping is disabled so both sides agree on
// the byte form regardless of encoder defaults.
func Canonicalize(payload map[string]any) ([]byte, error) {
	stripped := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == Field {
			continue
		}
		stripped[k] = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stripped); err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Sign returns the hex HMAC-SHA512 digest of the canonical payload.
func Sign(payload map[string]any, secretKey string) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	return SignBytes(canonical, secretKey), nil
}

// SignBytes returns the hex HMAC-SHA512 digest of raw bytes.
func SignBytes(data []byte, secretKey string) string {
	return hex.EncodeToString(mac(data, secretKey))
}

// Verify recomputes the signature of payload and compares it with the
// embedded one in constant time. Any missing, malformed or mismatched
// signature is a failure.
func Verify(payload map[string]any, secretKey string) bool {
	if secretKey == "" {
		return false
	}
	supplied, ok := payload[Field].(string)
	if !ok || supplied == "" {
		return false
	}
	got, err := hex.DecodeString(supplied)
	if err != nil {
		return false
	}
	canonical, err := Canonicalize(payload)
	if err != nil {
		return false
	}
	return hmac.Equal(got, mac(canonical, secretKey))
}

// Decode parses a JSON body into the generic form Sign and Verify expect,
// keeping numbers as their literal text.
func Decode(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("decode payload: body is not a JSON object")
	}
	return payload, nil
}

func mac(data []byte, secretKey string) []byte {
	h := hmac.New(sha512.New, []byte(secretKey))
	h.Write(data)
	return h.Sum(nil)
}
