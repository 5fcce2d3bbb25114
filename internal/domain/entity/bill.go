package entity

import (
	"fmt"
	"time"
)

// Status is the internal code of a bill's review state
type Status string

var statusLabels = map[Status]string{
	StatusPending:  LabelPending,
	StatusAccepted: LabelAccepted,
	StatusRefused:  LabelRefused,
}

// IsValid returns true if the status is one of the defined codes
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label of the status.
// Unrecognized codes fall into the unknown bucket.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return LabelUnknown
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Bill represents an employee expense report
type Bill struct {
	ID         string  `json:"id" yaml:"id"`
	Email      string  `json:"email" yaml:"email"`
	Type       string  `json:"type" yaml:"type"`
	Name       string  `json:"name" yaml:"name"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Date       string  `json:"date" yaml:"date"`
	VAT        string  `json:"vat,omitempty" yaml:"vat"`
	Pct        int     `json:"pct" yaml:"pct"`
	Commentary string  `json:"commentary,omitempty" yaml:"commentary"`
	FileURL    *string `json:"fileUrl" yaml:"fileUrl"`
	FileName   *string `json:"fileName" yaml:"fileName"`
	Status     Status  `json:"status" yaml:"status"`

	CreatedAt time.Time `json:"-" yaml:"-"`
	UpdatedAt time.Time `json:"-" yaml:"-"`
}

// HasAttachment returns true when both the file URL and name are set
func (b *Bill) HasAttachment() bool {
	return b.FileURL != nil && *b.FileURL != "" && b.FileName != nil && *b.FileName != ""
}

// AttachmentFile is a file selected as a bill's proof
type AttachmentFile struct {
	Name     string
	Content  []byte
	MimeType string
}

// UploadPayload bundles the proof file and its owner for the upload phase
type UploadPayload struct {
	File  AttachmentFile
	Email string
}

// UploadRef is the storage reference returned by the upload phase
type UploadRef struct {
	Key     string `json:"key"`
	FileURL string `json:"filePath"`
}

// User is the authenticated session identity
type User struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// StoredAttachment records where a bill's proof file was written
type StoredAttachment struct {
	BillID      string
	StoragePath string
	MimeType    string
	Size        int64
	CreatedAt   time.Time
}

// Validate checks the record invariants: a known status, and a file URL and
// name that are either both set or both absent.
func (b *Bill) Validate() error {
	if !b.Status.IsValid() {
		return &InvalidBillError{BillID: b.ID, Reason: fmt.Sprintf("unknown status %q", b.Status)}
	}
	if isSet(b.FileURL) != isSet(b.FileName) {
		return &InvalidBillError{BillID: b.ID, Reason: "fileUrl and fileName must be set together"}
	}
	return nil
}

func isSet(s *string) bool {
	return s != nil && *s != ""
}
