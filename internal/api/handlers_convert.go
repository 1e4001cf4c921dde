package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/reportcsv/internal/csvout"
	"github.com/dgallion1/reportcsv/internal/parser"
	"github.com/dgallion1/reportcsv/internal/pipeline"
	"github.com/dgallion1/reportcsv/internal/preview"
	"github.com/go-chi/chi/v5"
)

// uploadSource adapts one multipart file part to a pipeline source.
type uploadSource struct {
	name string
	fh   *multipart.FileHeader
}

func (u uploadSource) Name() string { return u.name }

func (u uploadSource) Open() (io.ReadCloser, error) { return u.fh.Open() }

type upload struct {
	sources []pipeline.Source
	skipped []string
	form    *multipart.Form
}

func (u *upload) close() {
	if u.form != nil {
		u.form.RemoveAll()
	}
}

// readUpload parses the "files" parts of a multipart request, keeping the
// ones the converter accepts. On failure it has already written the error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	// Extra 10MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", tooBig.Limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	up := &upload{form: r.MultipartForm, skipped: []string{}}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		up.close()
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return nil, false
	}
	if len(files) > s.cfg.MaxFiles {
		up.close()
		jsonError(w, fmt.Sprintf("too many files (%d, max %d)", len(files), s.cfg.MaxFiles), http.StatusBadRequest)
		return nil, false
	}

	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.Accepts(filename, fh.Header.Get("Content-Type")) {
			up.skipped = append(up.skipped, filename)
			continue
		}
		if fh.Size > s.cfg.MaxUploadBytes {
			up.close()
			writeFileError(w, filename, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		up.sources = append(up.sources, uploadSource{name: filename, fh: fh})
	}
	if len(up.sources) == 0 {
		up.close()
		jsonError(w, "no JSON files in upload", http.StatusBadRequest)
		return nil, false
	}
	if len(up.skipped) > 0 {
		s.log.Info("skipped uploads", "files", up.skipped)
	}
	return up, true
}

// handleConvert runs a batch and keeps the result for preview and download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer up.close()

	job, err := s.orchestrator.Convert(r.Context(), up.sources)
	if err != nil {
		s.batchError(w, err)
		return
	}

	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"batch_id":     snap.ID,
		"status":       snap.Status,
		"files":        snap.Files,
		"skipped":      up.skipped,
		"count":        snap.Progress.Records,
		"preview":      preview.Build(job.Records(), s.previewOptions(false)),
		"preview_url":  fmt.Sprintf("/api/convert/%s/preview", snap.ID),
		"download_url": fmt.Sprintf("/api/convert/%s/csv", snap.ID),
	})
}

// handleConvertCSV runs a batch and streams the CSV back in one request.
func (s *Server) handleConvertCSV(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer up.close()

	records, err := s.orchestrator.Records(r.Context(), up.sources)
	if err != nil {
		s.batchError(w, err)
		return
	}
	out, err := csvout.Encode(records)
	if err != nil {
		s.batchError(w, err)
		return
	}
	s.writeCSV(w, out)
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "batchID"))
	if job == nil {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "batchID"))
	if job == nil {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(preview.Build(job.Records(), s.previewOptions(all)))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "batchID"))
	if job == nil {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	out, err := job.CSV(csvout.Encode)
	if err != nil {
		s.batchError(w, err)
		return
	}
	s.writeCSV(w, out)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if !s.orchestrator.DeleteJob(chi.URLParam(r, "batchID")) {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) previewOptions(all bool) preview.Options {
	return preview.Options{
		Rows:      s.cfg.PreviewRows,
		CellWidth: s.cfg.PreviewCellWidth,
		All:       all,
	}
}

func (s *Server) writeCSV(w http.ResponseWriter, out string) {
	w.Header().Set("Content-Type", "text/csv;charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.DownloadFilename))
	w.Header().Set("ETag", `"`+pipeline.ContentHashHex([]byte(out))[:16]+`"`)
	io.WriteString(w, out)
}

// batchError maps a conversion failure to a response.
func (s *Server) batchError(w http.ResponseWriter, err error) {
	var fe *pipeline.FileError
	switch {
	case errors.Is(err, pipeline.ErrFileTooLarge) && errors.As(err, &fe):
		writeFileError(w, fe.Name, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.As(err, &fe):
		writeFileError(w, fe.Name, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, csvout.ErrNothingToConvert):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("conversion failed", "error", err)
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func writeFileError(w http.ResponseWriter, file, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "file": file})
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
