package errors

import "errors"

var (
	ErrNotFound            = errors.New("NOT_FOUND")
	ErrTeamExists          = errors.New("TEAM_EXISTS")
	ErrAlreadyMember       = errors.New("ALREADY_MEMBER")
	ErrMemberLimitExceeded = errors.New("MEMBER_LIMIT_EXCEEDED")
	ErrInvalidOperation    = errors.New("INVALID_OPERATION")
	ErrUnauthorized        = errors.New("UNAUTHORIZED")
	ErrConflict            = errors.New("CONFLICT")
	ErrAuditUnavailable    = errors.New("AUDIT_UNAVAILABLE")
	ErrInvalidInput        = errors.New("INVALID_INPUT")
)

// DomainError представляет доменную ошибку с кодом и сообщением
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError создает новую доменную ошибку
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
