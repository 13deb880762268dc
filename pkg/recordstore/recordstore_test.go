package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify(t *testing.T) {
	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	nsErr := mongo.CommandError{Code: 26, Message: "ns not found"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no documents", mongo.ErrNoDocuments, CodeRowNotFound},
		{"duplicate key", dupErr, CodeDuplicateKey},
		{"namespace not found", nsErr, CodeRelationMissing},
		{"canceled", context.Canceled, CodeAborted},
		{"wrapped canceled", fmt.Errorf("find: %w", context.Canceled), CodeAborted},
		{"deadline", context.DeadlineExceeded, CodeTransient},
		{"other", errors.New("boom"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("Bookings", tt.err)
			if !IsCode(got, tt.want) {
				t.Errorf("Classify() = %v, want code %s", got, tt.want)
			}
			var storeErr *Error
			if !errors.As(got, &storeErr) || storeErr.Err == nil {
				t.Errorf("Classify() should keep the cause")
			}
			if storeErr != nil && storeErr.Table != "Bookings" {
				t.Errorf("table = %q, want Bookings", storeErr.Table)
			}
		})
	}
}

func TestClassify_KeepsStoreError(t *testing.T) {
	orig := newError(CodeRelationMissing, "TimeSlots", "collection does not exist", nil)
	if got := Classify("Other", fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Errorf("Classify() should return the existing store error, got %v", got)
	}
	if Classify("x", nil) != nil {
		t.Errorf("Classify(nil) should be nil")
	}
}

func TestTranslate(t *testing.T) {
	log := logger.Discard()

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", newError(CodeRowNotFound, "Requests", "no matching row", nil), apperrors.CodeNotFound, http.StatusNotFound},
		{"duplicate", newError(CodeDuplicateKey, "Bookings", "duplicate key", nil), apperrors.CodeConflict, http.StatusConflict},
		{"relation missing", newError(CodeRelationMissing, "DeletedItems", "missing", nil), apperrors.CodeSchemaMissing, http.StatusServiceUnavailable},
		{"transient", newError(CodeTransient, "Requests", "down", nil), apperrors.CodeTransient, http.StatusServiceUnavailable},
		{"aborted", newError(CodeAborted, "Requests", "gone", context.Canceled), apperrors.CodeAborted, apperrors.StatusClientClosedRequest},
		{"unknown", newError(CodeUnknown, "Requests", "?", errors.New("raw driver text")), apperrors.CodeInternal, http.StatusInternalServerError},
		{"unclassified", errors.New("raw"), apperrors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apperrors.AsAppError(Translate(log, tt.err, "Request", "load request"))
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestTranslate_SchemaMissingNamesTable(t *testing.T) {
	err := Translate(logger.Discard(), newError(CodeRelationMissing, "InvoiceSettings", "missing", nil), "Settings", "load settings")
	appErr := apperrors.AsAppError(err)
	if appErr.Details["relation"] != "InvoiceSettings" {
		t.Errorf("details = %v, want relation InvoiceSettings", appErr.Details)
	}
}

func TestTranslate_PassesAppErrors(t *testing.T) {
	orig := apperrors.Conflict("slot no longer available")
	if got := Translate(logger.Discard(), orig, "Booking", "create booking"); got != orig {
		t.Errorf("Translate() should return app errors unchanged")
	}
}
