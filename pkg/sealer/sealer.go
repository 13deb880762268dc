// Package sealer produces opaque, tamper-proof tokens for invoice QR codes.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const separator = "\x1f"

var ErrInvalidToken = errors.New("invalid token")

// InvoiceRef identifies an issued invoice.
type InvoiceRef struct {
	OrganizationID string `json:"organization_id"`
	RequestID      string `json:"request_id"`
	InvoiceNumber  string `json:"invoice_number"`
}

type Sealer struct {
	aead cipher.AEAD
}

// New builds a sealer from a 16, 24 or 32 byte key. An empty key gets a
// random one, so tokens only verify until the process restarts.
func New(key string) (*Sealer, error) {
	raw := []byte(key)
	if len(raw) == 0 {
		raw = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, raw); err != nil {
			return nil, fmt.Errorf("failed to generate seal key: %w", err)
		}
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid seal key: %w", err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aesgcm}, nil
}

func (s *Sealer) Seal(ref InvoiceRef) (string, error) {
	if strings.Contains(ref.OrganizationID+ref.RequestID+ref.InvoiceNumber, separator) {
		return "", fmt.Errorf("%w: reference contains a separator", ErrInvalidToken)
	}
	plaintext := []byte(ref.OrganizationID + separator + ref.RequestID + separator + ref.InvoiceNumber)

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

func (s *Sealer) Open(token string) (InvoiceRef, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return InvoiceRef{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return InvoiceRef{}, fmt.Errorf("%w: too short", ErrInvalidToken)
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	pt, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return InvoiceRef{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	parts := strings.SplitN(string(pt), separator, 3)
	if len(parts) != 3 {
		return InvoiceRef{}, fmt.Errorf("%w: bad format", ErrInvalidToken)
	}

	return InvoiceRef{OrganizationID: parts[0], RequestID: parts[1], InvoiceNumber: parts[2]}, nil
}
