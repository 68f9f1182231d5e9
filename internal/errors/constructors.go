package errors

func Invalid(field, reason string) *Error {
	return New(CategoryValidation, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

func ConfigRequired(field string) *Error {
	return New(CategoryConfig, "required configuration missing").
		WithContext("field", field)
}

func Transport(route string, cause error) *Error {
	return Wrap(cause, CategoryNetwork, "design service unreachable").
		WithContext("route", route)
}

func Service(route string, cause error) *Error {
	return Wrap(cause, CategoryService, "design service rejected request").
		WithContext("route", route)
}

func Internal(message string, cause error) *Error {
	return Wrap(cause, CategoryInternal, message)
}
