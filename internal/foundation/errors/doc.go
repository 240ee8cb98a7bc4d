// Package errors provides the classified error primitives used across the buildpack.
//
// A ClassifiedError carries a category (which part of the build failed), a severity and a
// retry strategy together with structured context. Errors are created through the fluent
// ErrorBuilder:
//
//	err := errors.InstallError("dependency download failed").
//		WithContext("dependency", name).
//		WithCause(cause).
//		Retryable().
//		Build()
//
// The CLIErrorAdapter maps classified errors to process exit codes.
package errors
