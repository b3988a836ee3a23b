package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"textlens-cli/internal/client"
	"textlens-cli/internal/config"
	"textlens-cli/internal/extractor"
	"textlens-cli/internal/models"
	"textlens-cli/internal/repository"
	"textlens-cli/internal/storage"
	"textlens-cli/internal/utils"
)

type AnalysisService interface {
	Health(ctx context.Context) (client.Response, error)
	AnalyzeText(ctx context.Context, text string, analysisType client.AnalysisType) (client.Response, error)
	AnalyzeLocalDocument(ctx context.Context, src string, analysisType client.AnalysisType) (client.Response, error)
	AnalyzeFile(ctx context.Context, src string, analysisType client.AnalysisType) (client.Response, error)
	Upload(ctx context.Context, src string) (client.Response, error)
	Chat(ctx context.Context, message, chatContext string, continueLast bool) (client.Response, error)
	History(ctx context.Context, limit int) ([]models.Record, error)
}

type analysisService struct {
	api    client.Client
	repo   repository.Repository
	store  storage.ObjectStore
	logger *utils.Logger
}

func NewService(api client.Client, repo repository.Repository, cfg *config.Config, logger *utils.Logger) AnalysisService {
	var store storage.ObjectStore
	if cfg.S3Endpoint != "" {
		s3Store, err := storage.New(context.Background(), cfg)
		if err != nil {
			logger.Fatal("Failed to initialize object storage", "error", err)
		}
		store = s3Store
	}

	return &analysisService{
		api:    api,
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

func (s *analysisService) Health(ctx context.Context) (client.Response, error) {
	resp, err := s.api.HealthCheck(ctx)
	if err != nil {
		s.logger.Error("Health check failed", "error", err)
		return nil, utils.NewInternalError(fmt.Sprintf("Health check failed: %v", err))
	}

	return resp, nil
}

func (s *analysisService) AnalyzeText(ctx context.Context, text string, analysisType client.AnalysisType) (client.Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, utils.NewUsageError("No text provided to analyze")
	}

	resp, err := s.api.AnalyzeText(ctx, text, analysisType)
	if err != nil {
		s.logger.Error("Text analysis request failed", "error", err)
		return nil, utils.NewInternalError(fmt.Sprintf("Analysis request failed: %v", err))
	}

	s.recordHistory(ctx, models.OpAnalyzeText, snippet(text), string(analysisType.OrDefault()), resp)
	return resp, nil
}

func (s *analysisService) AnalyzeLocalDocument(ctx context.Context, src string, analysisType client.AnalysisType) (client.Response, error) {
	path, name, cleanup, err := s.resolveSource(ctx, src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("Failed to read document", "error", err, "path", path)
		return nil, utils.NewNotFoundError(fmt.Sprintf("Cannot read %s: %v", src, err))
	}

	text, err := extractor.FromFile(name, data)
	if err != nil {
		s.logger.Error("Text extraction failed", "error", err, "filename", name)
		return nil, utils.NewUsageError(fmt.Sprintf("Cannot extract text from %s: %v", src, err))
	}

	s.logger.Info("Extracted document text", "filename", name, "text_length", len(text))

	resp, err := s.api.AnalyzeText(ctx, text, analysisType)
	if err != nil {
		s.logger.Error("Text analysis request failed", "error", err, "source", src)
		return nil, utils.NewInternalError(fmt.Sprintf("Analysis request failed: %v", err))
	}

	s.recordHistory(ctx, models.OpAnalyzeText, src, string(analysisType.OrDefault()), resp)
	return resp, nil
}

func (s *analysisService) AnalyzeFile(ctx context.Context, src string, analysisType client.AnalysisType) (client.Response, error) {
	path, name, cleanup, err := s.resolveSource(ctx, src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	file := client.FileHandle{URI: path, Name: name, Type: contentTypeFor(name)}

	resp, err := s.api.AnalyzeFile(ctx, file, analysisType)
	if err != nil {
		s.logger.Error("File analysis request failed", "error", err, "source", src)
		return nil, utils.NewInternalError(fmt.Sprintf("File analysis request failed: %v", err))
	}

	s.archive(ctx, path, name, resp)
	s.recordHistory(ctx, models.OpAnalyzeFile, src, string(analysisType.OrDefault()), resp)
	return resp, nil
}

func (s *analysisService) Upload(ctx context.Context, src string) (client.Response, error) {
	path, name, cleanup, err := s.resolveSource(ctx, src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	file := client.FileHandle{URI: path, Name: name, Type: contentTypeFor(name)}

	resp, err := s.api.UploadFile(ctx, file)
	if err != nil {
		s.logger.Error("Upload request failed", "error", err, "source", src)
		return nil, utils.NewInternalError(fmt.Sprintf("Upload request failed: %v", err))
	}

	s.archive(ctx, path, name, resp)
	s.recordHistory(ctx, models.OpUpload, src, "", resp)
	return resp, nil
}

func (s *analysisService) Chat(ctx context.Context, message, chatContext string, continueLast bool) (client.Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, utils.NewUsageError("No message provided")
	}

	if continueLast && chatContext == "" {
		chatContext = s.lastChatContext(ctx)
	}

	resp, err := s.api.Chat(ctx, message, chatContext)
	if err != nil {
		s.logger.Error("Chat request failed", "error", err)
		return nil, utils.NewInternalError(fmt.Sprintf("Chat request failed: %v", err))
	}

	s.recordHistory(ctx, models.OpChat, message, "", resp)
	return resp, nil
}

func (s *analysisService) History(ctx context.Context, limit int) ([]models.Record, error) {
	if s.repo == nil {
		return nil, utils.NewInternalError("History is not available")
	}

	records, err := s.repo.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to load history", "error", err)
		return nil, utils.NewInternalError(fmt.Sprintf("Failed to load history: %v", err))
	}

	return records, nil
}

// resolveSource materializes src as a local file. s3:// sources are fetched
// through the object store into a temp file; cleanup removes it.
func (s *analysisService) resolveSource(ctx context.Context, src string) (path, name string, cleanup func(), err error) {
	noop := func() {}

	if !storage.IsS3URI(src) {
		info, err := os.Stat(src)
		if err != nil {
			return "", "", noop, utils.NewNotFoundError(fmt.Sprintf("File not found: %s", src))
		}
		if info.IsDir() {
			return "", "", noop, utils.NewUsageError(fmt.Sprintf("%s is a directory, not a file", src))
		}
		return src, filepath.Base(src), noop, nil
	}

	if s.store == nil {
		return "", "", noop, utils.NewUsageError("S3 source given but S3_ENDPOINT is not configured")
	}

	bucket, key, err := storage.ParseS3URI(src)
	if err != nil {
		return "", "", noop, utils.NewUsageError(err.Error())
	}

	data, err := s.store.Fetch(ctx, bucket, key)
	if err != nil {
		s.logger.Error("Failed to fetch object", "error", err, "source", src)
		return "", "", noop, utils.NewNotFoundError(fmt.Sprintf("Cannot fetch %s: %v", src, err))
	}

	tmp, err := os.CreateTemp("", "textlens-*"+filepath.Ext(key))
	if err != nil {
		return "", "", noop, utils.NewInternalError(fmt.Sprintf("Failed to stage %s: %v", src, err))
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", noop, utils.NewInternalError(fmt.Sprintf("Failed to stage %s: %v", src, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", noop, utils.NewInternalError(fmt.Sprintf("Failed to stage %s: %v", src, err))
	}

	s.logger.Info("Staged remote object", "source", src, "temp", tmp.Name())
	return tmp.Name(), filepath.Base(key), func() { os.Remove(tmp.Name()) }, nil
}

// archive stores the submitted file and the response JSON side by side under
// archive/<id>/ in the object store. Best effort: failures are logged, never
// returned, and a half-written pair is cleaned up.
func (s *analysisService) archive(ctx context.Context, path, name string, resp client.Response) {
	if s.store == nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("Archive skipped, cannot re-read file", "error", err, "path", path)
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("Archive skipped, cannot encode response", "error", err)
		return
	}

	id := utils.GenerateID()

	fileKey := fmt.Sprintf("archive/%s/%s", id, name)
	if err := s.store.Put(ctx, fileKey, data, contentTypeFor(name)); err != nil {
		s.logger.Warn("Failed to archive file", "error", err, "key", fileKey)
		return
	}

	resultKey := fmt.Sprintf("archive/%s/analysis.json", id)
	if err := s.store.Put(ctx, resultKey, body, "application/json"); err != nil {
		s.logger.Warn("Failed to archive response", "error", err, "key", resultKey)
		// Attempt to cleanup the orphaned file object
		_ = s.store.Remove(ctx, fileKey)
		return
	}

	s.logger.Info("Archived result", "file_key", fileKey, "result_key", resultKey)
}

// recordHistory saves a local record of a completed operation. Best effort:
// a history failure never fails an operation that already succeeded remotely.
func (s *analysisService) recordHistory(ctx context.Context, op, input, analysisType string, resp client.Response) {
	if s.repo == nil {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("History skipped, cannot encode response", "error", err)
		return
	}

	rec := &models.Record{
		ID:           utils.GenerateID(),
		Operation:    op,
		Input:        input,
		AnalysisType: analysisType,
		Response:     string(body),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Warn("Failed to record history", "error", err, "operation", op)
	}
}

// lastChatContext returns the response text of the most recent chat, or ""
// when there is none.
func (s *analysisService) lastChatContext(ctx context.Context) string {
	if s.repo == nil {
		return ""
	}

	rec, err := s.repo.LastByOperation(ctx, models.OpChat)
	if err != nil {
		s.logger.Warn("Failed to look up previous chat", "error", err)
		return ""
	}
	if rec == nil {
		s.logger.Info("No previous chat found, starting fresh")
		return ""
	}

	return responseText(rec.Response)
}

// responseText pulls a readable reply out of a stored response body, falling
// back to the raw JSON when no known field is present.
func responseText(raw string) string {
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return raw
	}

	for _, key := range []string{"response", "reply", "answer", "message"} {
		if text, ok := body[key].(string); ok && text != "" {
			return text
		}
	}

	return raw
}

// snippet truncates long inputs for history storage.
func snippet(text string) string {
	const maxRunes = 500

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	return string([]rune(text)[:maxRunes]) + "..."
}

// contentTypeFor maps a filename extension to the MIME type sent with the
// multipart file part.
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt", ".text":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
