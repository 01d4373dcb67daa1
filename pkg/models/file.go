package models

import (
	"time"
)

// LoadStatus is the definite outcome of loading one admitted file
type LoadStatus string

const (
	StatusOK           LoadStatus = "ok"
	StatusBinary       LoadStatus = "binary"
	StatusDecodeError  LoadStatus = "decode-error"
	StatusSizeExceeded LoadStatus = "size-exceeded"
	StatusError        LoadStatus = "error"
	StatusFiltered     LoadStatus = "filtered" // Decoded, but rejected by a content inclusion policy
)

// FileRecord is the content-phase result for one admitted file
type FileRecord struct {
	Path      string      `json:"-"`    // Absolute path
	RelPath   string      `json:"path"` // Slash-separated path relative to the scan root
	Size      int64       `json:"size"`
	ModTime   time.Time   `json:"modified"`
	RawLength int64       `json:"raw_length"` // Bytes actually read
	Status    LoadStatus  `json:"status"`
	Encoding  string      `json:"encoding,omitempty"`
	Content   string      `json:"content,omitempty"` // Present only when Status is ok
	Matches   MatchResult `json:"matches"`
	Reason    string      `json:"reason,omitempty"` // Why content is absent
	Error     string      `json:"error,omitempty"`
	Tokens    int         `json:"tokens,omitempty"`
}

// HasContent reports whether the record carries decoded text
func (r *FileRecord) HasContent() bool {
	return r.Status == StatusOK
}

// IsSensitive reports whether any sensitive heuristic matched
func (r *FileRecord) IsSensitive() bool {
	return len(r.Matches.Sensitive) > 0
}

// Describe returns a human-readable explanation for records without content
func (r *FileRecord) Describe() string {
	switch r.Status {
	case StatusOK:
		return ""
	case StatusBinary:
		return "binary file skipped"
	case StatusDecodeError:
		return "could not decode text: " + r.Reason
	case StatusSizeExceeded:
		return "file exceeds read limit: " + r.Reason
	case StatusFiltered:
		return "excluded by content filter: " + r.Reason
	default:
		return "read failed: " + r.Error
	}
}
