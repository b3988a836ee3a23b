// Package client implements the HTTP client for the text-analysis backend.
//
// Every operation is a plain mapping from its inputs to one HTTP call: the
// parsed response body is returned unmodified whatever the status code, and a
// transport failure is returned exactly as the transport produced it. There
// is no retrying, no status-code branching and no logging at this layer;
// callers that care about backend-level failure inspect the returned body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"
)

// DefaultTimeout is the transport timeout applied when New is given a
// non-positive one. It covers the whole exchange, uniformly for every call.
const DefaultTimeout = 60 * time.Second

type Client interface {
	UploadFile(ctx context.Context, file FileHandle) (Response, error)
	AnalyzeText(ctx context.Context, text string, analysisType AnalysisType) (Response, error)
	AnalyzeFile(ctx context.Context, file FileHandle, analysisType AnalysisType) (Response, error)
	Chat(ctx context.Context, message, chatContext string) (Response, error)
	HealthCheck(ctx context.Context) (Response, error)
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client bound to baseURL for its lifetime. Base URL and
// timeout are fixed at construction; there is no per-call override.
func New(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UploadFile sends the file as the single "file" part of a multipart form to
// POST /api/upload.
func (c *apiClient) UploadFile(ctx context.Context, file FileHandle) (Response, error) {
	return c.postMultipart(ctx, "/api/upload", file, nil)
}

// AnalyzeText sends {text, analysis_type} as JSON to POST /api/analyze. An
// empty analysisType is sent as "general".
func (c *apiClient) AnalyzeText(ctx context.Context, text string, analysisType AnalysisType) (Response, error) {
	return c.postJSON(ctx, "/api/analyze", analyzeTextRequest{
		Text:         text,
		AnalysisType: string(analysisType.OrDefault()),
	})
}

// AnalyzeFile sends the file plus an analysis_type field as a multipart form
// to POST /api/analyze-file. An empty analysisType is sent as "general".
func (c *apiClient) AnalyzeFile(ctx context.Context, file FileHandle, analysisType AnalysisType) (Response, error) {
	return c.postMultipart(ctx, "/api/analyze-file", file, map[string]string{
		"analysis_type": string(analysisType.OrDefault()),
	})
}

// Chat sends {message, context} as JSON to POST /api/chat. The context string
// may be empty; it is always present in the body.
func (c *apiClient) Chat(ctx context.Context, message, chatContext string) (Response, error) {
	return c.postJSON(ctx, "/api/chat", chatRequest{
		Message: message,
		Context: chatContext,
	})
}

// HealthCheck issues GET /health with no body.
func (c *apiClient) HealthCheck(ctx context.Context) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func (c *apiClient) postJSON(ctx context.Context, path string, payload any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

func (c *apiClient) postMultipart(ctx context.Context, path string, file FileHandle, fields map[string]string) (Response, error) {
	f, err := os.Open(file.URI)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreatePart(filePartHeader(file))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}

	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, err
		}
	}

	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.send(req)
}

// send executes the request and decodes the body. Errors come back exactly as
// the transport or decoder produced them.
func (c *apiClient) send(req *http.Request) (Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// quoteEscaper matches the escaping mime/multipart applies to part headers.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader builds the header for the file part, carrying the handle's
// own MIME type instead of the application/octet-stream that CreateFormFile
// would force.
func filePartHeader(file FileHandle) textproto.MIMEHeader {
	partType := file.Type
	if partType == "" {
		partType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+quoteEscaper.Replace(file.Name)+`"`)
	h.Set("Content-Type", partType)
	return h
}
