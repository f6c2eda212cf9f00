package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/models"
	"github.com/hyperjump/shiken/internal/pipeline"
	"github.com/hyperjump/shiken/internal/storage"
)

const maxMultipartMemory = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "files", s.config.Upload.DocumentExtensions)
}

func (s *Server) handleUploadMarkup(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "file", s.config.Upload.MarkupExtensions)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, field string, allowed []string) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	var saved []*models.SourceDocument
	for _, fh := range files {
		if !hasExtension(fh.Filename, allowed) {
			s.respondError(w, http.StatusBadRequest, "unsupported file type: "+fh.Filename)
			return
		}
		f, err := fh.Open()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "failed to read upload: "+fh.Filename)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "failed to read upload: "+fh.Filename)
			return
		}

		doc, err := s.uploads.Save(r.Context(), fh.Filename, content)
		if err != nil {
			s.logger.Error("upload failed", zap.String("filename", fh.Filename), zap.Error(err))
			s.respondError(w, uploadErrorStatus(err), err.Error())
			return
		}
		saved = append(saved, doc)
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"documents": saved,
		"message":   "files uploaded successfully",
	})
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrTooManyDocuments):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func hasExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.uploads.List(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.SourceDocument{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.uploads.Remove(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleClearDocuments(w http.ResponseWriter, r *http.Request) {
	n, err := s.uploads.Clear(r.Context())
	if err != nil {
		s.logger.Error("clear uploads failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"removed": n, "status": "cleared"})
}

type buildRequest struct {
	ClearExisting bool `json:"clear_existing"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	paths, err := s.uploads.Paths(r.Context())
	if err != nil {
		s.logger.Error("build: list uploads failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(paths) == 0 {
		s.respondError(w, http.StatusBadRequest, "no documents uploaded")
		return
	}

	result, err := s.pipeline.Build(r.Context(), paths, req.ClearExisting)
	if err != nil {
		s.logger.Error("build failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.config.Retrieval.TopK
	}

	result, err := s.pipeline.Query(r.Context(), req.Query, topK)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.pipeline.Stats())
}

func (s *Server) handleSelectors(w http.ResponseWriter, r *http.Request) {
	elements, err := s.pipeline.AllStructuralElements(r.Context())
	if err != nil {
		s.logger.Error("selector inventory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":          len(elements),
		"html_selectors": elements,
	})
}

type testCaseRequest struct {
	FeatureQuery string `json:"feature_query"`
	NumTestCases int    `json:"num_test_cases"`
}

type testCaseResponse struct {
	TestCases      []models.TestCase `json:"test_cases"`
	ContextSources []string          `json:"context_sources"`
	GenerationTime float64           `json:"generation_time"`
}

func (s *Server) handleGenerateTestCases(w http.ResponseWriter, r *http.Request) {
	if s.testAgent == nil {
		s.respondError(w, http.StatusServiceUnavailable, "generation not configured")
		return
	}
	var req testCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FeatureQuery) == "" {
		s.respondError(w, http.StatusBadRequest, "feature_query is required")
		return
	}

	start := time.Now()
	retrieved, err := s.pipeline.Query(r.Context(), req.FeatureQuery, s.config.Retrieval.TopK)
	if err != nil {
		s.logger.Error("test case retrieval failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if retrieved.Context == pipeline.EmptyContext {
		s.respondError(w, http.StatusNotFound, "no relevant context found; upload documents and build the knowledge base first")
		return
	}

	cases, err := s.testAgent.Generate(r.Context(), req.FeatureQuery, retrieved.Context, req.NumTestCases)
	if err != nil {
		s.logger.Error("test case generation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, testCaseResponse{
		TestCases:      cases,
		ContextSources: retrieved.Sources,
		GenerationTime: time.Since(start).Seconds(),
	})
}

type scriptRequest struct {
	TestCase models.TestCase `json:"test_case"`
}

type scriptResponse struct {
	Script         string  `json:"script"`
	TestID         string  `json:"test_id"`
	Filename       string  `json:"filename"`
	GenerationTime float64 `json:"generation_time"`
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	if s.scriptAgent == nil {
		s.respondError(w, http.StatusServiceUnavailable, "generation not configured")
		return
	}
	var req scriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TestCase.TestID == "" {
		s.respondError(w, http.StatusBadRequest, "test_case is required")
		return
	}

	start := time.Now()
	selectors, err := s.pipeline.AllStructuralElements(r.Context())
	if err != nil {
		s.logger.Error("selector inventory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(selectors) == 0 {
		s.respondError(w, http.StatusNotFound, "no page selectors found; upload markup and build the knowledge base first")
		return
	}

	retrieved, err := s.pipeline.Query(r.Context(), req.TestCase.Feature, 5)
	if err != nil {
		s.logger.Error("script retrieval failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	script, err := s.scriptAgent.Generate(r.Context(), req.TestCase, selectors, retrieved.Context)
	if err != nil {
		s.logger.Error("script generation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := s.scriptAgent.Filename(req.TestCase)
	s.saveScript(filename, script)

	s.respondJSON(w, http.StatusOK, scriptResponse{
		Script:         script,
		TestID:         req.TestCase.TestID,
		Filename:       filename,
		GenerationTime: time.Since(start).Seconds(),
	})
}

// saveScript writes a generated script to the scripts directory. The script is
// still returned in the response, so persistence failures only log a warning.
func (s *Server) saveScript(filename, script string) {
	dir := s.config.Storage.ScriptsDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Warn("failed to create scripts directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		s.logger.Warn("failed to save script", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info("saved script", zap.String("path", path))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
