package dto

import "github.com/yukikurage/workforce-portal/internal/services"

// ReportDTO is the JSON rendering of a tabular report
type ReportDTO struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Empty  bool       `json:"empty"`
}

// ToReportDTO converts a report
func ToReportDTO(report *services.Report) ReportDTO {
	return ReportDTO{
		Header: report.Header,
		Rows:   report.Rows,
		Empty:  report.Empty(),
	}
}
