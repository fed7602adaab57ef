package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsNotFound reports whether err is a missing-row error from GORM.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsTransient reports errors worth surfacing as temporary unavailability
// rather than a broken request.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"bad connection",
		"too many connections",
		"database is locked",
		"server closed the connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
