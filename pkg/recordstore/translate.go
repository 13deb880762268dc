package recordstore

import (
	"errors"
	"fmt"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/logger"
)

// Translate turns a store error into the error a client sees. Raw driver
// messages never leave this function. Operator-facing conditions are logged.
func Translate(log *logger.Logger, err error, resource, action string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	var storeErr *Error
	if !errors.As(err, &storeErr) {
		storeErr = newError(CodeUnknown, "", "unclassified failure", err)
	}

	switch storeErr.Code {
	case CodeRowNotFound:
		return apperrors.NotFound(resource)
	case CodeDuplicateKey:
		return apperrors.Conflict(fmt.Sprintf("%s already exists", resource))
	case CodeRelationMissing:
		log.Warn("Storage relation missing, migrations have not been applied",
			"table", storeErr.Table,
			"action", action,
		)
		return apperrors.SchemaMissing(storeErr.Table, err)
	case CodeTransient:
		log.Warn("Transient store failure", "table", storeErr.Table, "action", action, "error", err)
		return apperrors.Transient(fmt.Sprintf("Failed to %s, please retry", action), err)
	case CodeAborted:
		log.Debug("Store operation aborted by caller", "table", storeErr.Table, "action", action)
		return apperrors.Aborted(err)
	default:
		log.Error("Store operation failed", "table", storeErr.Table, "action", action, "error", err)
		return apperrors.Internal(fmt.Sprintf("Failed to %s", action), err)
	}
}
