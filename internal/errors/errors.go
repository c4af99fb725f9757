package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the brace toolkit
type ErrorType string

const (
	ErrorTypeLex      ErrorType = "lex"
	ErrorTypeLanguage ErrorType = "language"
	ErrorTypeQuery    ErrorType = "query"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFileIO       ErrorType = "file_io"

	ErrorTypeConfig ErrorType = "config"
)

// ErrUnknownLanguage is wrapped by LanguageError when no language claims a path.
var ErrUnknownLanguage = errors.New("no language registered")

// LexError reports a tokenizer failure for one buffer.
type LexError struct {
	Type       ErrorType
	Path       string
	Language   string
	Underlying error
	Timestamp  time.Time
}

// NewLexError creates a new lex error
func NewLexError(language, path string, err error) *LexError {
	return &LexError{
		Type:       ErrorTypeLex,
		Path:       path,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *LexError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s tokenize failed for %s: %v", e.Language, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s tokenize failed: %v", e.Language, e.Underlying)
}

func (e *LexError) Unwrap() error {
	return e.Underlying
}

// LanguageError reports a path or name that no registered language handles.
type LanguageError struct {
	Type      ErrorType
	Name      string
	Path      string
	Timestamp time.Time
}

// NewLanguageError creates a language error for a language name or a path.
func NewLanguageError(name, path string) *LanguageError {
	return &LanguageError{
		Type:      ErrorTypeLanguage,
		Name:      name,
		Path:      path,
		Timestamp: time.Now(),
	}
}

func (e *LanguageError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("language %q: %v", e.Name, ErrUnknownLanguage)
	}
	return fmt.Sprintf("%s: %v", e.Path, ErrUnknownLanguage)
}

func (e *LanguageError) Unwrap() error {
	return ErrUnknownLanguage
}

// QueryError reports a caret position outside the buffer.
type QueryError struct {
	Type      ErrorType
	Path      string
	Position  string
	Size      int
	Timestamp time.Time
}

// NewQueryError creates a query error; position is the caller's spelling
// of the caret ("17" or "3:5").
func NewQueryError(path, position string, size int) *QueryError {
	return &QueryError{
		Type:      ErrorTypeQuery,
		Path:      path,
		Position:  position,
		Size:      size,
		Timestamp: time.Now(),
	}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("position %s is outside %s (%d bytes)", e.Position, e.Path, e.Size)
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying the underlying cause.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errorType = ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError reports a file skipped because of the size limit.
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for field %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects the per-file failures of a batch run.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected.
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
