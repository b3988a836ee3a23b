package utils

// AppError classifies a failure for the command-line boundary. ExitCode is
// the process exit status main should use when this error reaches it.
type AppError struct {
	ExitCode int
	Message  string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewUsageError reports bad invocation input (unknown flag value, missing
// argument, unreadable source path).
func NewUsageError(message string) *AppError {
	return &AppError{
		ExitCode: 2,
		Message:  message,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		ExitCode: 1,
		Message:  message,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		ExitCode: 1,
		Message:  message,
	}
}
