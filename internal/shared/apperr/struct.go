package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string            // safe to return to the caller
	Fields    map[string]string // field-level validation messages (optional)
	Err       error             // internal error, logged but never exposed
}
