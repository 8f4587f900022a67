package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/mtags/internal/format"
	"github.com/dgallion1/mtags/internal/matlab"
	"github.com/dgallion1/mtags/internal/mtag"
	"github.com/dgallion1/mtags/internal/pipeline"
	"github.com/dgallion1/mtags/internal/source"
	"github.com/go-chi/chi/v5"
)

// handleOutline scans one file synchronously. The source arrives either
// as a multipart "file" field or as a raw text body with a ?filename=
// query parameter.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	filename, data, err := readUpload(r, s.cfg.MaxUploadBytes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	opts := s.orchestrator.ScanOptions()
	if d := r.URL.Query().Get("dialect"); d != "" {
		dialect, err := matlab.ParseDialect(d)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Dialect = dialect
	}

	units, err := source.UnitsForFile(filename, data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The upload is a bare filename; the original path decides the
	// builtin system-root check, so let callers pass it along.
	if p := r.URL.Query().Get("path"); p != "" {
		for i := range units {
			units[i].Path = p
		}
	}

	var tags []*mtag.FunctionTag
	for _, u := range units {
		t0 := time.Now()
		tags = append(tags, matlab.Parse(u.Text, u.Path, opts)...)
		s.orchestrator.Stats().Record(time.Since(t0))
	}
	if tags == nil {
		tags = []*mtag.FunctionTag{}
	}

	prototypes := make([]string, 0, len(tags))
	for _, t := range tags {
		prototypes = append(prototypes, format.Prototype(t))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":   filename,
		"tags":       tags,
		"prototypes": prototypes,
	})
}

// handleBatchOutline queues an async job over multiple uploaded files.
func (s *Server) handleBatchOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var inputs []pipeline.InputFile
	var rejected []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !source.IsSupportedExtension(filename) {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}
		f, err := fh.Open()
		if err != nil {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}
		inputs = append(inputs, pipeline.InputFile{Name: filename, Data: data})
	}

	if len(inputs) == 0 {
		jsonError(w, "no scannable files in submission", http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewJobID(inputs[0].Name),
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetInputs(inputs)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"files":    len(inputs),
		"rejected": rejected,
		"poll_url": fmt.Sprintf("/api/outline/%s/status", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"outlines": job.Results(),
	})
}

func (s *Server) handleScanStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats().Snapshot(),
	})
}

// readUpload pulls the filename and bytes out of either a multipart
// form or a raw request body.
func readUpload(r *http.Request, maxBytes int64) (string, []byte, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return "", nil, fmt.Errorf("invalid multipart form: %s", err)
		}
		defer r.MultipartForm.RemoveAll()
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("file is required: %s", err)
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			return "", nil, fmt.Errorf("failed to read file")
		}
		if int64(len(data)) > maxBytes {
			return "", nil, fmt.Errorf("file exceeds max size (%d bytes)", maxBytes)
		}
		return sanitizeFilename(header.Filename), data, nil
	}

	filename := sanitizeFilename(r.URL.Query().Get("filename"))
	if filename == "" || filename == "unnamed" {
		filename = "input.m"
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read body")
	}
	if int64(len(data)) > maxBytes {
		return "", nil, fmt.Errorf("body exceeds max size (%d bytes)", maxBytes)
	}
	return filename, data, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
