package app

import (
	"encoding/json"
	"strings"

	"github.com/NivBraz/topworkplaces/internal/models"
)

// FormatReport renders the report as indented JSON. Without stats only the
// ranked entries are written.
func FormatReport(report *models.Report, indent int, includeStats bool) ([]byte, error) {
	pad := strings.Repeat(" ", indent)

	if includeStats {
		return json.MarshalIndent(report, "", pad)
	}

	entries := []models.ReportEntry{}
	if report != nil && report.TopWorkplaces != nil {
		entries = report.TopWorkplaces
	}
	return json.MarshalIndent(entries, "", pad)
}
