package hierarchy

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how a caller should react to them
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindConflict            Kind = "Conflict"
	KindStructuralViolation Kind = "StructuralViolation"
	KindInvalidInput        Kind = "InvalidInput"
)

// Error codes reported to API clients
const (
	CodeNotFound          = "CATEGORY_NOT_FOUND"
	CodeParentNotFound    = "PARENT_CATEGORY_NOT_FOUND"
	CodeDuplicateName     = "DUPLICATE_CATEGORY_NAME"
	CodeCircularReference = "CIRCULAR_REFERENCE"
	CodeMaxDepthExceeded  = "MAX_DEPTH_EXCEEDED"
	CodeInactiveCategory  = "INACTIVE_CATEGORY"
	CodeInvalidInput      = "INVALID_INPUT"
)

// Common errors
var (
	// ErrNotFound is returned when a category does not exist
	ErrNotFound = errors.New("category not found")
	// ErrParentNotFound is returned when the referenced parent does not exist
	ErrParentNotFound = errors.New("parent category not found")
	// ErrDuplicateName is returned when an active sibling already has the name
	ErrDuplicateName = errors.New("duplicate category name")
	// ErrCircularReference is returned when a category would become its own ancestor
	ErrCircularReference = errors.New("circular reference")
	// ErrMaxDepthExceeded is returned when a category would sit deeper than MaxDepth
	ErrMaxDepthExceeded = errors.New("max depth exceeded")
	// ErrInactiveParent is returned when the target parent is inactive
	ErrInactiveParent = errors.New("inactive category")
	// ErrInvalidInput is returned for malformed names, negative sort orders and duplicate ids
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a coded, human-readable rejection of an operation.
// It unwraps to one of the package sentinels so errors.Is works on it.
type Error struct {
	Code    string
	Kind    Kind
	Message string
	Details string
	err     error
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func (e *Error) Unwrap() error {
	return e.err
}

// AsError extracts a *Error from err's chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// NotFoundError reports an unknown category id
func NotFoundError(id int64) *Error {
	return &Error{
		Code:    CodeNotFound,
		Kind:    KindNotFound,
		Message: "category not found",
		Details: fmt.Sprintf("no category with id %d", id),
		err:     ErrNotFound,
	}
}

// ParentNotFoundError reports an unknown parent id
func ParentNotFoundError(parentID int64) *Error {
	return &Error{
		Code:    CodeParentNotFound,
		Kind:    KindNotFound,
		Message: "parent category not found",
		Details: fmt.Sprintf("no category with parentId %d", parentID),
		err:     ErrParentNotFound,
	}
}

// DuplicateNameError reports a sibling name collision
func DuplicateNameError(name string, parentID *int64) *Error {
	parent := "root"
	if parentID != nil {
		parent = fmt.Sprintf("parent %d", *parentID)
	}
	return &Error{
		Code:    CodeDuplicateName,
		Kind:    KindConflict,
		Message: "duplicate category name",
		Details: fmt.Sprintf("category '%s' already exists under %s", name, parent),
		err:     ErrDuplicateName,
	}
}

// CircularReferenceError reports a reparent onto the category itself or one of its descendants
func CircularReferenceError(id, parentID int64, details string) *Error {
	if details == "" {
		details = fmt.Sprintf("setting parent of category %d to %d creates a cycle", id, parentID)
	}
	return &Error{
		Code:    CodeCircularReference,
		Kind:    KindStructuralViolation,
		Message: "circular reference",
		Details: details,
		err:     ErrCircularReference,
	}
}

// MaxDepthExceededError reports an attempted depth beyond maxDepth
func MaxDepthExceededError(depth, maxDepth int) *Error {
	return &Error{
		Code:    CodeMaxDepthExceeded,
		Kind:    KindStructuralViolation,
		Message: "max depth exceeded",
		Details: fmt.Sprintf("depth %d exceeds max depth %d", depth, maxDepth),
		err:     ErrMaxDepthExceeded,
	}
}

// InactiveParentError reports an attempt to attach under an inactive category
func InactiveParentError(id int64) *Error {
	return &Error{
		Code:    CodeInactiveCategory,
		Kind:    KindStructuralViolation,
		Message: "inactive category",
		Details: fmt.Sprintf("parent category %d is inactive", id),
		err:     ErrInactiveParent,
	}
}

// InvalidInputError reports malformed input
func InvalidInputError(details string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Kind:    KindInvalidInput,
		Message: "invalid input",
		Details: details,
		err:     ErrInvalidInput,
	}
}
