package models

// ScanResult is the complete output of one pipeline run
type ScanResult struct {
	Root    string         `json:"root"`
	Tree    *TreeNode      `json:"tree"`
	Files   []*FileRecord  `json:"files"` // Depth-first tree order
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	Summary Summary        `json:"summary"`
}

// Summary contains the run counters
type Summary struct {
	FilesScanned   int   `json:"files_scanned"`  // Every file entry the walker looked at
	FilesAdmitted  int   `json:"files_admitted"` // Files that passed the path filters
	FilesLoaded    int   `json:"files_loaded"`
	FilesBinary    int   `json:"files_binary"`
	FilesFiltered  int   `json:"files_filtered"`
	FilesFailed    int   `json:"files_failed"` // Read, decode and size-limit failures
	FilesSensitive int   `json:"files_sensitive"`
	TotalBytes     int64 `json:"total_bytes"` // Sum of admitted file sizes
	TotalTokens    int   `json:"total_tokens,omitempty"`
}

// Tally computes the content counters from the records. FilesScanned is
// owned by the walker and left untouched.
func (r *ScanResult) Tally() {
	s := &r.Summary
	s.FilesAdmitted = len(r.Files)
	s.FilesLoaded, s.FilesBinary, s.FilesFiltered, s.FilesFailed, s.FilesSensitive = 0, 0, 0, 0, 0
	s.TotalBytes, s.TotalTokens = 0, 0

	for _, rec := range r.Files {
		s.TotalBytes += rec.Size
		s.TotalTokens += rec.Tokens
		if rec.IsSensitive() {
			s.FilesSensitive++
		}
		switch rec.Status {
		case StatusOK:
			s.FilesLoaded++
		case StatusBinary:
			s.FilesBinary++
		case StatusFiltered:
			s.FilesFiltered++
		default:
			s.FilesFailed++
		}
	}
}
