package models

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"opsconsole/lib/apperr"
	"opsconsole/lib/lifecycle"
)

// Document is the schemaless shape records take inside the record store.
type Document map[string]interface{}

// ID returns the document's id field.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Project keeps only the named fields.
func (d Document) Project(fields []string) Document {
	out := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	return out
}

// ToDocument converts a json-tagged struct into a Document. Fields tagged
// omitempty and left empty are absent from the result.
func ToDocument(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// DecodeDocument fills out from doc. Type mismatches are reported as
// validation errors naming the offending field.
func DecodeDocument(doc Document, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return apperr.Invalid(typeErr.Field, "expected %s", typeErr.Type.String())
		}
		return apperr.Invalid("", "malformed record: %v", err)
	}
	return nil
}

// Timestamp formats t the way created_at and approved_at are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Invalid(field, "is required")
	}
	return nil
}

func validEmail(field, value string) error {
	if _, err := mail.ParseAddress(value); err != nil {
		return apperr.Invalid(field, "must be a valid email address")
	}
	return nil
}

func validDate(field, value string) error {
	if _, err := lifecycle.ParseDate(value); err != nil {
		return &apperr.InvalidDateError{Field: field, Value: value}
	}
	return nil
}

func nonNegative(field string, value float64) error {
	if value < 0 {
		return apperr.Invalid(field, "must not be negative")
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
