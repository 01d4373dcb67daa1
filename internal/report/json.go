package report

import (
	"encoding/json"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
)

// JSONRenderer renders the whole result as one JSON document
type JSONRenderer struct{}

// jsonReport fixes the top-level field order
type jsonReport struct {
	Root    string                `json:"root"`
	Summary models.Summary        `json:"summary"`
	Tree    *models.TreeNode      `json:"tree"`
	Files   []*models.FileRecord  `json:"files"`
	Skipped []models.SkippedEntry `json:"skipped"`
}

// Render implements Renderer
func (r *JSONRenderer) Render(result *models.ScanResult) (string, error) {
	report := &jsonReport{
		Root:    result.Root,
		Summary: result.Summary,
		Tree:    prune(result.Tree),
		Files:   result.Files,
		Skipped: result.Skipped,
	}
	if report.Files == nil {
		report.Files = []*models.FileRecord{}
	}
	if report.Skipped == nil {
		report.Skipped = []models.SkippedEntry{}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
