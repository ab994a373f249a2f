package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentExt is the file extension of persisted documents.
const DocumentExt = ".json"

// Document is the per-account artifact written after extraction: the owning
// account plus every account it follows.
type Document struct {
	Username   string    `json:"username" validate:"required"`
	ID         string    `json:"id" validate:"required"`
	FullName   string    `json:"full_name,omitempty"`
	Followings []Account `json:"followings" validate:"dive"`
}

// Owner returns the owning account of the document.
func (d *Document) Owner() Account {
	return Account{ID: d.ID, Username: d.Username, FullName: d.FullName}
}

// FileName returns the file name the document is stored under.
// Usernames that cannot form a plain file name are rejected.
func (d *Document) FileName() (string, error) {
	name := d.Username
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q is not usable as a file name", ErrInvalidUsername, d.Username)
	}
	return name + DocumentExt, nil
}

// MarshalDocument encodes d as indented JSON with a trailing newline.
// Output is stable for equal documents.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	doc := *d
	if doc.Followings == nil {
		doc.Followings = []Account{}
	}
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode document %s: %w", d.Username, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes and validates a document. Any failure wraps
// ErrMalformedDocument.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrMalformedDocument, ErrParse, err)
	}
	if err := ValidateDocument(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &d, nil
}
