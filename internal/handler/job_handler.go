package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/domain/dto"
	"jobboard/internal/middleware"
	"jobboard/internal/query"
	"jobboard/internal/response"
	"jobboard/internal/service"
)

const (
	resumeField = "file"
	// multipartSlack covers boundaries, part headers and small form fields.
	multipartSlack int64 = 1 << 20
)

type JobHandler struct {
	jobService         service.JobService
	applicationService service.ApplicationService
	maxFileSize        int64
}

// NewJobHandler builds the job routes handler. Apply request bodies are cut
// off once they exceed maxFileSize plus room for the multipart envelope.
func NewJobHandler(jobService service.JobService, applicationService service.ApplicationService, maxFileSize int64) *JobHandler {
	if maxFileSize <= 0 {
		maxFileSize = service.DefaultMaxFileSize
	}
	return &JobHandler{
		jobService:         jobService,
		applicationService: applicationService,
		maxFileSize:        maxFileSize,
	}
}

// GetJobs handles GET /api/v1/jobs
func (h *JobHandler) GetJobs(c *gin.Context) {
	jobs, err := h.jobService.List(c.Request.Context(), query.FromValues(c.Request.URL.Query()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, jobs)
}

// GetJobsInRadius handles GET /api/v1/jobs/:zipcode/:distance
func (h *JobHandler) GetJobsInRadius(c *gin.Context) {
	jobs, err := h.jobService.SearchRadius(c.Request.Context(), c.Param("zipcode"), c.Param("distance"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, jobs)
}

// GetJob handles GET /api/v1/job/:id/:slug
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.jobService.Get(c.Request.Context(), id, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, job)
}

// NewJob handles POST /api/v1/job/new
func (h *JobHandler) NewJob(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		response.Error(c, domain.NewError(domain.KindUnauthenticated, "Login first to access this resource", nil))
		return
	}

	var req dto.JobCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domain.Invalid("Invalid request format", err.Error()))
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), caller, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, http.StatusCreated, "Job Created.", job)
}

// UpdateJob handles PUT /api/v1/job/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		response.Error(c, domain.NewError(domain.KindUnauthenticated, "Login first to access this resource", nil))
		return
	}
	id, ok := jobID(c)
	if !ok {
		return
	}

	var req dto.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domain.Invalid("Invalid request format", err.Error()))
		return
	}

	job, err := h.jobService.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, http.StatusOK, "Job is updated.", job)
}

// DeleteJob handles DELETE /api/v1/job/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		response.Error(c, domain.NewError(domain.KindUnauthenticated, "Login first to access this resource", nil))
		return
	}
	id, ok := jobID(c)
	if !ok {
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), caller, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, http.StatusOK, "Job is deleted.", nil)
}

// ApplyJob handles PUT /api/v1/job/:id/apply
// The resume is read from the "file" multipart field, or the first file sent.
func (h *JobHandler) ApplyJob(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		response.Error(c, domain.NewError(domain.KindUnauthenticated, "Login first to access this resource", nil))
		return
	}
	id, ok := jobID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartSlack)
	file, err := resumeUpload(c)
	if err != nil {
		if isBodyTooLarge(err) {
			err = service.FileTooLarge(h.maxFileSize)
		}
		response.Error(c, err)
		return
	}

	name, err := h.applicationService.Apply(c.Request.Context(), caller, id, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, http.StatusOK, "Applied to Job successfully.", name)
}

func jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domain.NotFound("Job not found"))
		return uuid.Nil, false
	}
	return id, true
}

// resumeUpload returns a nil upload when the request carries no file. Only a
// body over the size cap is reported as an error.
func resumeUpload(c *gin.Context) (*service.Upload, error) {
	fh, err := c.FormFile(resumeField)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, err
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		fh = firstFile(c.Request.MultipartForm)
		if fh == nil {
			return nil, nil
		}
	}
	return &service.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}

func firstFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	for _, files := range form.File {
		if len(files) > 0 {
			return files[0]
		}
	}
	return nil
}
