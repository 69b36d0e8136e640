// internal/workers/burnout/generate-report/models.go
package generatereport

type Input struct {
	SubjectID string `json:"subjectId"`
	Format    string `json:"format,omitempty"`
	AuthToken string `json:"authToken,omitempty"`
}

type Output struct {
	Report      string `json:"report"`
	Format      string `json:"format"`
	ContentType string `json:"contentType"`
	SizeBytes   int    `json:"sizeBytes"`
}
