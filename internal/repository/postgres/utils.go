package postgresrepo

import (
	"fmt"
)

// wrapDBErr maps common DB errors to repository-level errors and wraps them with
// the provided operation name. Retryable errors are kept intact so the unit of
// work can still classify them.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if IsRetryable(err) {
		return fmt.Errorf("%s:%w", op, err)
	}

	return fmt.Errorf("%s:%w", op, translateDBErr(err))
}
