package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrBillNotFound is returned when no bill matches the given key
	ErrBillNotFound = errors.New("bill not found")

	// ErrNoSessionUser is returned when the session holds no user
	ErrNoSessionUser = errors.New("no user in session")

	// ErrAttachmentMissing is returned when a bill is submitted before its proof was uploaded
	ErrAttachmentMissing = errors.New("bill has no uploaded attachment")

	// ErrNoStore is returned when an operation needs a storage gateway and none is configured
	ErrNoStore = errors.New("no storage gateway configured")
)

// ValidationError reports a proof file rejected on its extension
type ValidationError struct {
	FileName  string
	Extension string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid attachment extension %q for file %q", e.Extension, e.FileName)
}

// Message returns the user-facing text
func (e *ValidationError) Message() string {
	return MsgInvalidExtension
}

// UploadError reports a failed upload phase
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// SubmitError reports a failed update of a submitted bill
type SubmitError struct {
	BillID string
	Err    error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("update of bill %s failed: %v", e.BillID, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// FormatError reports a field of a fetched bill that could not be formatted
type FormatError struct {
	BillID string
	Field  string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot format %s %q of bill %s: %v", e.Field, e.Value, e.BillID, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ListError reports a failed retrieval of the bill collection.
// Its message is the backend's message, unchanged.
type ListError struct {
	Err error
}

func (e *ListError) Error() string {
	return e.Err.Error()
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// InvalidBillError reports a bill record that breaks the data model
type InvalidBillError struct {
	BillID string
	Reason string
}

func (e *InvalidBillError) Error() string {
	return fmt.Sprintf("invalid bill %s: %s", e.BillID, e.Reason)
}
