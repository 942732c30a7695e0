package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different error categories
type ErrorType int

const (
	ErrConfig ErrorType = iota
	ErrAsset
	ErrDependency
	ErrInspector
	ErrFileOp
	ErrPackageWrite
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrConfig:
		return "ConfigError"
	case ErrAsset:
		return "AssetError"
	case ErrDependency:
		return "DependencyError"
	case ErrInspector:
		return "InspectorError"
	case ErrFileOp:
		return "FileOperationError"
	case ErrPackageWrite:
		return "PackageWriteError"
	default:
		return "UnknownError"
	}
}

// Configuration error kinds
var (
	ErrMissingAssets            = errors.New("missing mandatory key assets")
	ErrMissingField             = errors.New("missing mandatory field")
	ErrWrongType                = errors.New("wrong type")
	ErrUnsupportedPathSyntax    = errors.New("unsupported toml path syntax")
	ErrBranchNotFound           = errors.New("branch not found")
	ErrInvalidVersionConstraint = errors.New("invalid version constraint")
	ErrAmbiguousVariant         = errors.New("ambiguous variant")
	ErrInvalidScriptlet         = errors.New("invalid scriptlet")
	ErrInvalidAutoReqMode       = errors.New("invalid auto-req mode")
	ErrInvalidCompression       = errors.New("invalid payload compression")
	ErrInvalidMode              = errors.New("invalid file mode")
	ErrInvalidSourceDate        = errors.New("invalid source date")
	ErrInvalidDestination       = errors.New("destination must be an absolute path")
)

// Asset error kinds
var (
	ErrSourceNotFound             = errors.New("asset source not found")
	ErrDestinationMustBeDirectory = errors.New("destination must be a directory")
	ErrEmptyPackage               = errors.New("no assets resolved")
	ErrInvalidGlob                = errors.New("invalid glob pattern")
	ErrDuplicateDestination       = errors.New("duplicate destination")
)

// Dependency error kinds
var (
	ErrDelegateFailed   = errors.New("find-requires delegate failed")
	ErrUnreadableOutput = errors.New("unreadable delegate output")
)

// Inspector error kinds
var (
	ErrNotElf                  = errors.New("not an ELF file")
	ErrMalformedDynamicSection = errors.New("malformed dynamic section")
)

// Package write error kinds
var (
	ErrPackageMismatch = errors.New("written package does not match")
)

// Error represents a categorized rpmgen error. Subject names the key, path
// or file the error is about.
type Error struct {
	Type    ErrorType
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ConfigError wraps err as a configuration error about subject.
func ConfigError(subject string, err error) error {
	return &Error{Type: ErrConfig, Subject: subject, Err: err}
}

// AssetError wraps err as an asset error about subject.
func AssetError(subject string, err error) error {
	return &Error{Type: ErrAsset, Subject: subject, Err: err}
}

// DependencyError wraps err as a dependency error about subject.
func DependencyError(subject string, err error) error {
	return &Error{Type: ErrDependency, Subject: subject, Err: err}
}

// InspectorError wraps err as an inspector error about subject.
func InspectorError(subject string, err error) error {
	return &Error{Type: ErrInspector, Subject: subject, Err: err}
}

// PackageWriteError wraps err as a failure to produce the package file.
func PackageWriteError(subject string, err error) error {
	return &Error{Type: ErrPackageWrite, Subject: subject, Err: err}
}

// TypeOf returns the category of the first *Error in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}
