package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict   = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden             = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState          = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrCurrencyMismatch      = NewDomainError("CURRENCY_MISMATCH", "Amounts are in different currencies")
	ErrOverpayment           = NewDomainError("OVERPAYMENT", "Payment amount exceeds remaining amount")
	ErrHasPayments           = NewDomainError("HAS_PAYMENTS", "Record has payments applied and cannot be deleted")
	ErrStoreTimeout          = NewDomainError("STORE_TIMEOUT", "Store operation timed out")
	ErrStoreConflict         = NewDomainError("STORE_CONFLICT", "Store operation conflicted with a concurrent write")
	ErrInternalInconsistency = NewDomainError("INTERNAL_INCONSISTENCY", "Ledger invariant violated")
)
