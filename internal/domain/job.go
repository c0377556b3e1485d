package domain

import (
	"time"

	"github.com/google/uuid"
)

type Industry string

const (
	IndustryBusiness          Industry = "Business"
	IndustryIT                Industry = "Information Technology"
	IndustryBanking           Industry = "Banking"
	IndustryEducation         Industry = "Education/Training"
	IndustryTelecommunication Industry = "Telecommunication"
	IndustryOthers            Industry = "Others"
)

type JobType string

const (
	JobTypePermanent  JobType = "Permanent"
	JobTypeTemporary  JobType = "Temporary"
	JobTypeInternship JobType = "Internship"
)

type EducationLevel string

const (
	EducationBachelors EducationLevel = "Bachelors"
	EducationMasters   EducationLevel = "Masters"
	EducationPhd       EducationLevel = "Phd"
)

type ExperienceBand string

const (
	ExperienceNone      ExperienceBand = "No Experience"
	ExperienceOneToTwo  ExperienceBand = "1 Year - 2 Years"
	ExperienceTwoToFive ExperienceBand = "2 Year - 5 Years"
	ExperienceFivePlus  ExperienceBand = "5 Years+"
)

var (
	ValidIndustries = map[Industry]bool{
		IndustryBusiness:          true,
		IndustryIT:                true,
		IndustryBanking:           true,
		IndustryEducation:         true,
		IndustryTelecommunication: true,
		IndustryOthers:            true,
	}
	ValidJobTypes = map[JobType]bool{
		JobTypePermanent:  true,
		JobTypeTemporary:  true,
		JobTypeInternship: true,
	}
	ValidEducationLevels = map[EducationLevel]bool{
		EducationBachelors: true,
		EducationMasters:   true,
		EducationPhd:       true,
	}
	ValidExperienceBands = map[ExperienceBand]bool{
		ExperienceNone:      true,
		ExperienceOneToTwo:  true,
		ExperienceTwoToFive: true,
		ExperienceFivePlus:  true,
	}
)

// DefaultApplicationWindow is how long a job accepts applications when no
// deadline is supplied.
const DefaultApplicationWindow = 7 * 24 * time.Hour

// Location is the geocoded form of a job address, stored as a GeoJSON point.
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"` // [longitude, latitude]
	FormattedAddress string    `json:"formattedAddress"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
}

// Application is one resume submitted against a job.
type Application struct {
	ApplicantID uuid.UUID `json:"id"`
	Resume      string    `json:"resume"`
	AppliedAt   time.Time `json:"appliedAt"`
}

type Job struct {
	ID           uuid.UUID      `json:"_id,omitzero"`
	Title        string         `json:"title,omitzero" validate:"required,max=100"`
	Slug         string         `json:"slug,omitzero"`
	Description  string         `json:"description,omitzero" validate:"required,max=1000"`
	Email        string         `json:"email,omitzero" validate:"omitempty,email"`
	Address      string         `json:"address,omitzero" validate:"required"`
	Location     *Location      `json:"location,omitzero"`
	Company      string         `json:"company,omitzero" validate:"required"`
	Industry     []Industry     `json:"industry,omitzero" validate:"required,min=1,dive,industry"`
	JobType      JobType        `json:"jobType,omitzero" validate:"required,job_type"`
	MinEducation EducationLevel `json:"minEducation,omitzero" validate:"required,education"`
	Positions    int            `json:"positions,omitzero" validate:"min=1"`
	Experience   ExperienceBand `json:"experience,omitzero" validate:"required,experience"`
	Salary       float64        `json:"salary,omitzero" validate:"required,gt=0"`
	PostingDate  time.Time      `json:"postingDate,omitzero"`
	LastDate     time.Time      `json:"lastDate,omitzero"`
	Applications []Application  `json:"applicantsApplied,omitzero"`
	OwnerID      uuid.UUID      `json:"user,omitzero"`
	Owner        *OwnerSummary  `json:"owner,omitzero"`
	Revision     int            `json:"revision,omitzero"`
}

// OwnerSummary is the public part of the owning user, attached on single fetch.
type OwnerSummary struct {
	ID   uuid.UUID `json:"_id"`
	Name string    `json:"name"`
}

// ApplyDefaults fills creation-time defaults for fields the caller left empty.
func (j *Job) ApplyDefaults(now time.Time, window time.Duration) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Positions == 0 {
		j.Positions = 1
	}
	if j.PostingDate.IsZero() {
		j.PostingDate = now
	}
	if j.LastDate.IsZero() {
		if window <= 0 {
			window = DefaultApplicationWindow
		}
		j.LastDate = j.PostingDate.Add(window)
	}
	if j.Applications == nil {
		j.Applications = []Application{}
	}
}

// DeadlinePassed reports whether applications are closed at now.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return now.After(j.LastDate)
}

// HasApplicant scans the application list for the applicant.
func (j *Job) HasApplicant(applicantID uuid.UUID) bool {
	for _, a := range j.Applications {
		if a.ApplicantID == applicantID {
			return true
		}
	}
	return false
}

// ResumeFiles lists the stored file names referenced by the job.
func (j *Job) ResumeFiles() []string {
	files := make([]string, 0, len(j.Applications))
	for _, a := range j.Applications {
		if a.Resume != "" {
			files = append(files, a.Resume)
		}
	}
	return files
}
