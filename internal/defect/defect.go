// Package defect defines the typed findings produced by the review checks
// and the per-unit result they aggregate into.
package defect

import "fmt"

// Category groups defects by what went wrong.
type Category string

const (
	// CategoryStructural covers missing, empty and unparsable files as well
	// as file-naming violations.
	CategoryStructural Category = "structural"
	// CategoryFormatting covers indentation and placeholder-marker problems.
	CategoryFormatting Category = "formatting"
	// CategoryReference covers unresolved keys, placeholders and
	// secret-reference mismatches.
	CategoryReference Category = "reference"
)

// FileDefect describes a problem with a file as a whole: structure, syntax
// or naming. Line and Column are 1-indexed; zero means the position is
// unknown or not applicable.
type FileDefect struct {
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

func (d FileDefect) String() string {
	return fmt.Sprintf("%s/line %d/col %d/%s", d.File, d.Line, d.Column, d.Description)
}

// KeyDefect describes a problem with a specific secret group/key pair or
// placeholder. Group and Key may be empty when the defect is not tied to a
// resolved pair (for example an unmatched placeholder marker).
type KeyDefect struct {
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Group       string   `json:"group"`
	Key         string   `json:"key"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

func (d KeyDefect) String() string {
	return fmt.Sprintf("%s/line %d/col %d/%s.%s/%s", d.File, d.Line, d.Column, d.Group, d.Key, d.Description)
}

// Result aggregates everything one ReviewUnit produced. A fresh Result is
// created per unit; nothing is shared across units in a batch.
type Result struct {
	Location         string       `json:"location,omitempty"`
	FileDefects      []FileDefect `json:"fileDefects,omitempty"`
	KeyDefects       []KeyDefect  `json:"keyDefects,omitempty"`
	PlaceholderCount int          `json:"placeholderCount"`
	ReferenceMatch   bool         `json:"referenceMatch"`
	// SecretName and ReferenceNames hold the manifest identity and the
	// comma-joined descriptor reference names, recorded for reporting only.
	SecretName     string `json:"secretName,omitempty"`
	ReferenceNames string `json:"referenceNames,omitempty"`
}

// AddFile appends file defects to the result.
func (r *Result) AddFile(defects ...FileDefect) {
	r.FileDefects = append(r.FileDefects, defects...)
}

// AddKey appends key defects to the result.
func (r *Result) AddKey(defects ...KeyDefect) {
	r.KeyDefects = append(r.KeyDefects, defects...)
}

// HasDefects reports whether any check recorded a defect.
func (r *Result) HasDefects() bool {
	return len(r.FileDefects) > 0 || len(r.KeyDefects) > 0
}

// TotalDefects returns the combined defect count.
func (r *Result) TotalDefects() int {
	return len(r.FileDefects) + len(r.KeyDefects)
}
