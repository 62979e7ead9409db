// Package errs defines the error kinds shared by both pipelines. The run
// drivers use errors.As on these types to decide metadata content and exit
// behavior.
package errs

import "fmt"

// ConfigError is an invalid or missing configuration value. Fatal before any
// output is written.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// InputError is a malformed or missing input file. Fatal for the run, but
// failed metadata is still written.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input error: %v", e.Err)
	}
	return fmt.Sprintf("input error: %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// CollaboratorError is a failure from an external collaborator (embedding
// model, lexical matcher, layout extractor). Not retried; fatal for the run
// with failed metadata written.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator error: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
