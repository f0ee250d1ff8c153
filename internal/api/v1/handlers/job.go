package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "echoscript/internal/api/errors"
	"echoscript/internal/api/middleware"
	"echoscript/internal/api/v1/dto"
	"echoscript/internal/api/v1/services"
	"echoscript/internal/app/util/files"
)

// JobHandler handles the job feed, uploads, retries, deletes and exports
type JobHandler struct {
	service        services.JobService
	maxUploadBytes int64
	now            func() time.Time
}

// NewJobHandler creates a new job handler
func NewJobHandler(service services.JobService, maxUploadBytes int64) *JobHandler {
	return &JobHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// Create handles POST /api/v1/jobs
// Accepts a multipart upload in field "file" and starts processing it
func (h *JobHandler) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	if _, err := c.MultipartForm(); err != nil {
		middleware.HandleError(c, h.uploadError(err))
		return
	}

	var form dto.CreateJobForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		middleware.HandleError(c, h.uploadError(err))
		return
	}

	f, err := header.Open()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		middleware.HandleError(c, h.uploadError(err))
		return
	}
	if len(data) == 0 {
		middleware.HandleError(c, apierrors.NewValidationError("Validation failed", map[string]string{"file": "is empty"}))
		return
	}

	name := form.Name
	if name == "" {
		name = header.Filename
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = files.ContentType(header.Filename)
	}

	response, err := h.service.CreateJob(c.Request.Context(), middleware.APIKey(c), name, data, contentType)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, response)
}

// Import handles POST /api/v1/jobs/import
// Downloads the audio behind an episode page or direct link and starts processing it
func (h *JobHandler) Import(c *gin.Context) {
	var req dto.ImportJobRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ImportJob(c.Request.Context(), middleware.APIKey(c), req.URL, req.Name)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, response)
}

// List handles GET /api/v1/jobs
// Returns the caller's jobs, newest first, without results
func (h *JobHandler) List(c *gin.Context) {
	response, err := h.service.ListJobs(c.Request.Context(), middleware.APIKey(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(response.Total))
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	response, err := h.service.GetJob(c.Request.Context(), middleware.APIKey(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Retry handles POST /api/v1/jobs/:id/retry
func (h *JobHandler) Retry(c *gin.Context) {
	response, err := h.service.RetryJob(c.Request.Context(), middleware.APIKey(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, response)
}

// Delete handles DELETE /api/v1/jobs/:id
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteJob(c.Request.Context(), middleware.APIKey(c), c.Param("id")); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Export handles GET /api/v1/jobs/:id/export?format=full|clean|xlsx
func (h *JobHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}
	format := query.ParsedFormat()

	data, err := h.service.ExportJob(c.Request.Context(), middleware.APIKey(c), c.Param("id"), format)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(h.now())))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// Audio handles GET /api/v1/jobs/:id/audio
// Streams back the stored upload for playback
func (h *JobHandler) Audio(c *gin.Context) {
	data, err := h.service.GetAudio(c.Request.Context(), middleware.APIKey(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *JobHandler) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return apierrors.NewTooLargeError(fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
	}
	if errors.Is(err, http.ErrMissingFile) {
		return apierrors.NewValidationError("Validation failed", map[string]string{"file": "is required"})
	}
	if _, ok := err.(*apierrors.APIError); ok {
		return err
	}
	return apierrors.NewBadRequestError("invalid upload: " + err.Error())
}
