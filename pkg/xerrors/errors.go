package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Users / profiles
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// RoleErrorCode distinguishes role-assignment failures the way the
// callable surface reports them.
type RoleErrorCode string

const (
	CodeUnauthenticated  RoleErrorCode = "unauthenticated"
	CodePermissionDenied RoleErrorCode = "permission-denied"
	CodeInvalidArgument  RoleErrorCode = "invalid-argument"
	CodeInternal         RoleErrorCode = "internal"
)

// RoleError is a typed failure surfaced to the role-assignment caller.
// Never swallowed, unlike the fan-out pipeline's faults.
type RoleError struct {
	Code    RoleErrorCode
	Message string
}

func (e *RoleError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewRoleError(code RoleErrorCode, msg string) *RoleError {
	return &RoleError{Code: code, Message: msg}
}

// AsRoleError unwraps err into a *RoleError if it is one.
func AsRoleError(err error) (*RoleError, bool) {
	var re *RoleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
