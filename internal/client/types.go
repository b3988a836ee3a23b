package client

// AnalysisType selects the backend analysis mode. The backend owns the set of
// valid values; the client forwards whatever it is given without validating
// membership, so new backend modes need no client change.
type AnalysisType string

const (
	AnalysisGeneral   AnalysisType = "general"
	AnalysisSummary   AnalysisType = "summary"
	AnalysisSentiment AnalysisType = "sentiment"
	AnalysisKeywords  AnalysisType = "keywords"
	AnalysisQA        AnalysisType = "qa"
)

// OrDefault maps the zero value to the backend default.
func (t AnalysisType) OrDefault() AnalysisType {
	if t == "" {
		return AnalysisGeneral
	}
	return t
}

// FileHandle references a local file to attach to a multipart request. URI is
// the file path, opened at send time; Name becomes the multipart filename and
// Type the part's Content-Type (empty means application/octet-stream).
type FileHandle struct {
	URI  string
	Name string
	Type string
}

// Response is the parsed response body, returned exactly as the backend sent
// it. Field interpretation (success, result, status, ...) is the caller's
// responsibility.
type Response map[string]any

type analyzeTextRequest struct {
	Text         string `json:"text"`
	AnalysisType string `json:"analysis_type"`
}

type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}
