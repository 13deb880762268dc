package sealer

import (
	"errors"
	"testing"
)

func TestSealOpen(t *testing.T) {
	s, err := New("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	ref := InvoiceRef{OrganizationID: "default", RequestID: "7c1e", InvoiceNumber: "RE-2025:0042"}

	token, err := s.Seal(ref)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	got, err := s.Open(token)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got != ref {
		t.Errorf("Open() = %+v, want %+v", got, ref)
	}
}

func TestOpen_RejectsTampering(t *testing.T) {
	s, _ := New("0123456789abcdef")
	token, _ := s.Seal(InvoiceRef{OrganizationID: "o", RequestID: "r", InvoiceNumber: "1"})

	tampered := []byte(token)
	tampered[len(tampered)-1] ^= 0x01
	if tampered[len(tampered)-1] == token[len(token)-1] {
		t.Fatal("tamper did not change token")
	}

	for _, tok := range []string{string(tampered), "", "!!!", "AAAA"} {
		if _, err := s.Open(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Open(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestOpen_OtherKeyFails(t *testing.T) {
	a, _ := New("")
	b, _ := New("")
	token, _ := a.Seal(InvoiceRef{OrganizationID: "o", RequestID: "r", InvoiceNumber: "1"})
	if _, err := b.Open(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token from another key should not open, got %v", err)
	}
}

func TestNew_InvalidKeyLength(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Errorf("expected error for 5-byte key")
	}
}
