// Package apperrors holds the typed errors shared by the store, service and HTTP layers.
package apperrors

import (
	"fmt"
	"sort"
	"strings"
)

// Deletion block reasons
const (
	ReasonSubmittedUsage     = "used in submitted assessment"
	ReasonSoleActiveTemplate = "sole active template of its type"
)

// ValidationError reports malformed input, field by field
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Message: "validation failed",
		Fields:  map[string]string{field: message},
	}
}

// DuplicateNameError reports a template name that is already taken
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s name %q already exists", e.Entity, e.Name)
}

// DuplicateCodeError reports a code that is already taken within its scope
type DuplicateCodeError struct {
	Entity string
	Code   string
	Scope  string
}

func (e *DuplicateCodeError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s code already exists within %s", e.Entity, e.Scope)
	}
	return fmt.Sprintf("%s code %q already exists within %s", e.Entity, e.Code, e.Scope)
}

// DeletionBlockedError reports a delete refused by the deletion guard
type DeletionBlockedError struct {
	Entity    string
	ID        uint
	Reason    string
	BlockedBy []string
}

func (e *DeletionBlockedError) Error() string {
	msg := fmt.Sprintf("cannot delete %s %d: %s", e.Entity, e.ID, e.Reason)
	if len(e.BlockedBy) > 0 {
		msg += " (indicators: " + strings.Join(e.BlockedBy, ", ") + ")"
	}
	return msg
}

// CloneFailedError wraps any failure inside a template clone
type CloneFailedError struct {
	SourceID uint
	Name     string
	Err      error
}

func (e *CloneFailedError) Error() string {
	return fmt.Sprintf("failed to clone template %d as %q: %v", e.SourceID, e.Name, e.Err)
}

func (e *CloneFailedError) Unwrap() error {
	return e.Err
}

// MixedParentError reports a reorder batch whose ids belong to several parents
type MixedParentError struct {
	Kind      string
	ParentIDs []uint
}

func (e *MixedParentError) Error() string {
	ids := make([]string, len(e.ParentIDs))
	for i, id := range e.ParentIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("reorder batch of %s spans multiple parents: %s", e.Kind, strings.Join(ids, ", "))
}

// NotFoundError reports a missing or soft-deleted record
type NotFoundError struct {
	Entity string
	ID     uint
	IDs    []uint
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) > 0 {
		ids := make([]string, len(e.IDs))
		for i, id := range e.IDs {
			ids[i] = fmt.Sprint(id)
		}
		return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(ids, ", "))
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NotFound is a shorthand for a single missing record
func NotFound(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
