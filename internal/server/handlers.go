package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/bunko/internal/store"
	"go.uber.org/zap"
)

type sourceRequest struct {
	SourcePath string `json:"source_path"`
}

type writeRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourcePath == "" {
		s.respondError(w, http.StatusBadRequest, "source_path is required")
		return
	}
	s.logger.Debug("add document request", zap.String("source", req.SourcePath))
	name, err := s.lib.AddFile(r.Context(), req.SourcePath)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"filename": name})
}

func (s *Server) handleIngestHTML(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourcePath == "" {
		s.respondError(w, http.StatusBadRequest, "source_path is required")
		return
	}
	s.logger.Debug("ingest request", zap.String("source", req.SourcePath))
	res, err := s.lib.IngestHTML(r.Context(), req.SourcePath)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.lib.Store().List()
	if err != nil {
		s.logger.Error("list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string][]string{"files": files})
}

func (s *Server) handleReadText(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	content, err := s.lib.Store().ReadText(name)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "content": content})
}

func (s *Server) handleReadBinary(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	data, err := s.lib.Store().ReadBinary(name)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	// base64 exists only to cross this boundary; the store itself holds raw bytes.
	s.respondJSON(w, http.StatusOK, map[string]string{
		"name":    name,
		"content": base64.StdEncoding.EncodeToString(data),
	})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("write request", zap.String("name", name))
	if err := s.lib.Write(r.Context(), name, req.Content); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "status": "written"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	s.logger.Debug("delete request", zap.String("name", name))
	if err := s.lib.Delete(r.Context(), name); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "status": "deleted"})
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	exists, err := s.lib.Store().Exists(name)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"name": name, "exists": exists})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"path": s.lib.Store().Root()})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	entries, err := s.lib.Catalog().List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("catalog list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": entries})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	s.logger.Debug("search request", zap.String("query", query), zap.Int("limit", limit))
	hits, err := s.lib.Index().Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": query, "hits": hits})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondStoreError maps store failure modes onto HTTP statuses: bad names
// are the caller's fault, missing sources and files are 404, the rest is 500.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidName), errors.Is(err, store.ErrPathEscape):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrSourceMissing), errors.Is(err, fs.ErrNotExist):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
