package dto

import (
	"strings"
	"time"

	"jobboard/internal/domain"
)

// JobCreateRequest is the caller-settable part of a job. Location, slug,
// owner and applications are derived server side.
type JobCreateRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Email        string                `json:"email"`
	Address      string                `json:"address"`
	Company      string                `json:"company"`
	Industry     []domain.Industry     `json:"industry"`
	JobType      domain.JobType        `json:"jobType"`
	MinEducation domain.EducationLevel `json:"minEducation"`
	Positions    int                   `json:"positions"`
	Experience   domain.ExperienceBand `json:"experience"`
	Salary       float64               `json:"salary"`
	LastDate     *time.Time            `json:"lastDate"`
}

// JobUpdateRequest carries a partial update; nil fields are left unchanged.
type JobUpdateRequest struct {
	Title        *string                `json:"title,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Email        *string                `json:"email,omitempty"`
	Address      *string                `json:"address,omitempty"`
	Company      *string                `json:"company,omitempty"`
	Industry     []domain.Industry      `json:"industry,omitempty"`
	JobType      *domain.JobType        `json:"jobType,omitempty"`
	MinEducation *domain.EducationLevel `json:"minEducation,omitempty"`
	Positions    *int                   `json:"positions,omitempty"`
	Experience   *domain.ExperienceBand `json:"experience,omitempty"`
	Salary       *float64               `json:"salary,omitempty"`
	LastDate     *time.Time             `json:"lastDate,omitempty"`
}

// ToJob converts the request into an unsaved domain job.
func (req *JobCreateRequest) ToJob() *domain.Job {
	job := &domain.Job{
		Title:        req.Title,
		Description:  req.Description,
		Email:        req.Email,
		Address:      req.Address,
		Company:      req.Company,
		Industry:     req.Industry,
		JobType:      req.JobType,
		MinEducation: req.MinEducation,
		Positions:    req.Positions,
		Experience:   req.Experience,
		Salary:       req.Salary,
	}
	if req.LastDate != nil {
		job.LastDate = *req.LastDate
	}
	return job
}

// ApplyTo copies the provided fields onto job and reports whether the title
// and the address changed.
func (req *JobUpdateRequest) ApplyTo(job *domain.Job) (titleChanged, addressChanged bool) {
	if req.Title != nil && *req.Title != job.Title {
		job.Title = *req.Title
		titleChanged = true
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Email != nil {
		job.Email = *req.Email
	}
	if req.Address != nil && *req.Address != job.Address {
		job.Address = *req.Address
		addressChanged = true
	}
	if req.Company != nil {
		job.Company = *req.Company
	}
	if req.Industry != nil {
		job.Industry = req.Industry
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.MinEducation != nil {
		job.MinEducation = *req.MinEducation
	}
	if req.Positions != nil {
		job.Positions = *req.Positions
	}
	if req.Experience != nil {
		job.Experience = *req.Experience
	}
	if req.Salary != nil {
		job.Salary = *req.Salary
	}
	if req.LastDate != nil {
		job.LastDate = *req.LastDate
	}
	return titleChanged, addressChanged
}

// Sanitize cleans the provided text fields in place.
func (req *JobUpdateRequest) Sanitize() {
	sanitize(req.Title, domain.SanitizePlain)
	sanitize(req.Company, domain.SanitizePlain)
	sanitize(req.Address, domain.SanitizePlain)
	sanitize(req.Email, strings.TrimSpace)
	sanitize(req.Description, domain.SanitizeRich)
}

func sanitize(field *string, fn func(string) string) {
	if field != nil {
		*field = fn(*field)
	}
}
