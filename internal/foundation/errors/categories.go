package errors

import "maps"

// ErrorCategory classifies which part of a build produced an error.
type ErrorCategory string

const (
	// CategoryConfig represents configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Project resolution.
	CategoryNotFound  ErrorCategory = "not_found"
	CategoryAmbiguous ErrorCategory = "ambiguous"

	// Filesystem and subprocess plumbing.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryShell      ErrorCategory = "shell"

	// Pipeline stages.
	CategoryInstall ErrorCategory = "install"
	CategoryCompile ErrorCategory = "compile"
	CategoryCache   ErrorCategory = "cache"
	CategoryRelease ErrorCategory = "release"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the pipeline
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Build continues degraded
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy indicates how an error should be handled by a retrying caller.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
