package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repos care about
const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"

	pgErrSerializationFailure   = "40001"
	pgErrDeadlockDetected       = "40P01"
	pgErrLockNotAvailable       = "55P03"
	pgErrQueryCanceled          = "57014" // statement_timeout
	pgErrReadOnlySQLTransaction = "25006"
	pgErrCannotConnectNow       = "57P03"

	pgErrRaiseException = "P0001" // RAISE EXCEPTION from plpgsql
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := stderrs.As(err, &pgErr)
	return pgErr, ok
}

// RaisedReason returns the MESSAGE and DETAIL of a RAISE EXCEPTION issued by a
// stored function. The functions raise a stable reason token as the message
// and operator text as the detail
func RaisedReason(err error) (reason, detail string, ok bool) {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != pgErrRaiseException {
		return "", "", false
	}
	return strings.TrimSpace(pgErr.Message), strings.TrimSpace(pgErr.Detail), true
}

func dbErrorCode(pgErr *pgconn.PgError) ErrorCode {
	switch pgErr.Code {
	case pgErrUniqueViolation:
		return ErrorCodeDuplicateKey
	case pgErrForeignKeyViolation, pgErrStringDataRightTruncation, pgErrInvalidTextRepresentation:
		// fk violations mean the input referenced a missing row
		return ErrorCodeInvalidArgument
	case pgErrNotNullViolation, pgErrCheckViolation:
		return ErrorCodeValidation
	case pgErrRaiseException:
		return ErrorCodeConflict
	case pgErrReadOnlySQLTransaction, pgErrCannotConnectNow, pgErrQueryCanceled:
		return ErrorCodeUnavailable
	default:
		return ErrorCodeDB
	}
}

// FromPostgres wraps err with msg and a code derived from its SQLSTATE.
// Non postgres errors become ErrorCodeDB, nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pgErr, ok := pgError(err); ok {
		return Wrap(err, dbErrorCode(pgErr), msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// IsRetryable reports a transient conflict between transactions: serialization
// failures, deadlocks and lock timeouts. Cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
			return true
		}
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "commit unexpectedly resulted in rollback") ||
		strings.Contains(s, "deadlock detected") ||
		strings.Contains(s, "could not serialize access")
}
