package http

import (
	"fmt"
	"io"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadHandlers stores client-uploaded assets (maps, token art) on local
// disk and serves them back under /uploads.
type UploadHandlers struct {
	dir      string
	maxBytes int64
	onUpload func()
	log      *zerolog.Logger
}

// NewUploadHandlers creates an upload handler writing into dir. onUpload may
// be nil; when set it is called once per stored file.
func NewUploadHandlers(dir string, maxBytes int64, onUpload func(), logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{dir: dir, maxBytes: maxBytes, onUpload: onUpload, log: logger}
}

// UploadResponse is the success body for POST /api/upload.
type UploadResponse struct {
	OK   bool   `json:"ok"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// UploadErrorResponse is the failure body for POST /api/upload.
type UploadErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Upload handles POST /api/upload. The body is capped at maxBytes; the
// stored filename is sanitized and prefixed so uploads can never collide or
// escape the upload directory.
func (h *UploadHandlers) Upload(c *gin.Context) {
	c.Request.Body = stdhttp.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.log.Debug().Err(err).Msg("upload without usable file field")
		c.JSON(stdhttp.StatusBadRequest, UploadErrorResponse{Error: "NO_FILE"})
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	stored := fmt.Sprintf("%s_%s", uuid.NewString()[:8], name)
	dst := filepath.Join(h.dir, stored)

	out, err := os.Create(dst)
	if err != nil {
		h.log.Error().Err(err).Str("path", dst).Msg("create upload file")
		c.JSON(stdhttp.StatusInternalServerError, UploadErrorResponse{Error: "UPLOAD_FAILED"})
		return
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		os.Remove(dst)
		h.log.Error().Err(err).Str("path", dst).Msg("write upload file")
		c.JSON(stdhttp.StatusInternalServerError, UploadErrorResponse{Error: "UPLOAD_FAILED"})
		return
	}

	if h.onUpload != nil {
		h.onUpload()
	}
	h.log.Info().Str("name", stored).Int64("size", size).Msg("file uploaded")
	c.JSON(stdhttp.StatusOK, UploadResponse{
		OK:   true,
		URL:  "/uploads/" + stored,
		Name: stored,
		Size: size,
	})
}

// sanitizeFilename reduces a client-supplied filename to a safe basename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
