// Package errors collects the typed errors produced while building and
// querying a symbol index: structured enough that a caller can branch on
// Type without string-matching Error(), but still plain errors.Is/As
// friendly via Unwrap.
package errors

import (
	"fmt"
	"time"

	"github.com/fast-ide/symindex/internal/types"
)

// ErrorType classifies an error for branching/logging without parsing
// the message text.
type ErrorType string

const (
	ErrorTypeIndexing  ErrorType = "indexing"
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeSearch    ErrorType = "search"
	ErrorTypeDatabase  ErrorType = "database"
	ErrorTypeCancelled ErrorType = "cancelled"

	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// Cancelled is the sentinel a Database.UnwindIfCancelled implementation
// returns (wrapped or bare) to signal that a collection was asked to
// stop. The collector returns it to its caller unchanged; it is a single
// shared value, so errors.Is identifies it.
var Cancelled = &IndexingError{Type: ErrorTypeCancelled, Operation: "collect"}

// IndexingError represents a failure while walking a database to build
// one granule's symbol index.
type IndexingError struct {
	Type        ErrorType
	FileID      types.FileID
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewIndexingError creates a new indexing error with context.
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error.
func (e *IndexingError) WithFile(fileID types.FileID, path string) *IndexingError {
	e.FileID = fileID
	e.FilePath = path
	return e
}

// WithRecoverable marks the error as recoverable.
func (e *IndexingError) WithRecoverable(recoverable bool) *IndexingError {
	e.Recoverable = recoverable
	return e
}

func (e *IndexingError) Error() string {
	if e.Type == ErrorTypeCancelled {
		return "collection cancelled"
	}
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the error can be retried.
func (e *IndexingError) IsRecoverable() bool {
	return e.Recoverable
}

// DatabaseError wraps a failed lookup against the semantic database
// (a DeclID, BodyID, ImplID, TraitID or CrateID the index expected to
// resolve but didn't).
type DatabaseError struct {
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewDatabaseError creates a new database lookup error.
func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database lookup failed during %s: %v", e.Operation, e.Underlying)
}

func (e *DatabaseError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a tree-sitter parse failure or a node the query
// table expected but didn't find.
type ParseError struct {
	Type       ErrorType
	FileID     types.FileID
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error.
func NewParseError(fileID types.FileID, path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FileID:     fileID,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// SearchError represents a query evaluation failure (malformed query,
// automaton construction failure, FST read error).
type SearchError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error.
func NewSearchError(pattern string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Pattern:    pattern,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for pattern %q: %v", e.Pattern, e.Underlying)
}

func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error (missing source root member,
// unreadable file, permission denied).
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
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

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a project configuration value that
// config.Validate rejects (an empty project root, a negative limit, a
// suggestion threshold outside [0,1]).
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects every per-file failure from one granule build so a
// single bad file doesn't abort indexing the rest of the source root.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping any nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors, enabling errors.Is/As to walk every member.
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
