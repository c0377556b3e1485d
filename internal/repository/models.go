package repository

import (
	"time"

	"github.com/google/uuid"

	"jobboard/internal/domain"
)

type locationModel struct {
	Type             string    `bson:"type"`
	Coordinates      []float64 `bson:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty"`
	City             string    `bson:"city,omitempty"`
	State            string    `bson:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty"`
}

type applicationModel struct {
	ID        string    `bson:"id"`
	Resume    string    `bson:"resume"`
	AppliedAt time.Time `bson:"appliedAt"`
}

type jobModel struct {
	ID           string             `bson:"_id"`
	Title        string             `bson:"title,omitempty"`
	Slug         string             `bson:"slug,omitempty"`
	Description  string             `bson:"description,omitempty"`
	Email        string             `bson:"email,omitempty"`
	Address      string             `bson:"address,omitempty"`
	Location     *locationModel     `bson:"location,omitempty"`
	Company      string             `bson:"company,omitempty"`
	Industry     []string           `bson:"industry,omitempty"`
	JobType      string             `bson:"jobType,omitempty"`
	MinEducation string             `bson:"minEducation,omitempty"`
	Positions    int                `bson:"positions,omitempty"`
	Experience   string             `bson:"experience,omitempty"`
	Salary       float64            `bson:"salary,omitempty"`
	PostingDate  time.Time          `bson:"postingDate,omitempty"`
	LastDate     time.Time          `bson:"lastDate,omitempty"`
	Applications []applicationModel `bson:"applicantsApplied"`
	User         string             `bson:"user,omitempty"`
	Revision     int                `bson:"revision"`
}

type userModel struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func toJobModel(j *domain.Job) *jobModel {
	m := &jobModel{
		ID:           j.ID.String(),
		Title:        j.Title,
		Slug:         j.Slug,
		Description:  j.Description,
		Email:        j.Email,
		Address:      j.Address,
		Company:      j.Company,
		JobType:      string(j.JobType),
		MinEducation: string(j.MinEducation),
		Positions:    j.Positions,
		Experience:   string(j.Experience),
		Salary:       j.Salary,
		PostingDate:  j.PostingDate.UTC(),
		LastDate:     j.LastDate.UTC(),
		User:         j.OwnerID.String(),
		Revision:     j.Revision,
	}
	m.Industry = make([]string, 0, len(j.Industry))
	for _, ind := range j.Industry {
		m.Industry = append(m.Industry, string(ind))
	}
	if j.Location != nil {
		m.Location = &locationModel{
			Type:             j.Location.Type,
			Coordinates:      j.Location.Coordinates,
			FormattedAddress: j.Location.FormattedAddress,
			City:             j.Location.City,
			State:            j.Location.State,
			Zipcode:          j.Location.Zipcode,
			Country:          j.Location.Country,
		}
	}
	m.Applications = make([]applicationModel, 0, len(j.Applications))
	for _, a := range j.Applications {
		m.Applications = append(m.Applications, toApplicationModel(a))
	}
	return m
}

func toApplicationModel(a domain.Application) applicationModel {
	return applicationModel{
		ID:        a.ApplicantID.String(),
		Resume:    a.Resume,
		AppliedAt: a.AppliedAt.UTC(),
	}
}

func fromJobModel(m *jobModel) *domain.Job {
	j := &domain.Job{
		ID:           parseID(m.ID),
		Title:        m.Title,
		Slug:         m.Slug,
		Description:  m.Description,
		Email:        m.Email,
		Address:      m.Address,
		Company:      m.Company,
		JobType:      domain.JobType(m.JobType),
		MinEducation: domain.EducationLevel(m.MinEducation),
		Positions:    m.Positions,
		Experience:   domain.ExperienceBand(m.Experience),
		Salary:       m.Salary,
		PostingDate:  m.PostingDate,
		LastDate:     m.LastDate,
		OwnerID:      parseID(m.User),
		Revision:     m.Revision,
	}
	if m.Industry != nil {
		j.Industry = make([]domain.Industry, 0, len(m.Industry))
		for _, ind := range m.Industry {
			j.Industry = append(j.Industry, domain.Industry(ind))
		}
	}
	if m.Location != nil {
		j.Location = &domain.Location{
			Type:             m.Location.Type,
			Coordinates:      m.Location.Coordinates,
			FormattedAddress: m.Location.FormattedAddress,
			City:             m.Location.City,
			State:            m.Location.State,
			Zipcode:          m.Location.Zipcode,
			Country:          m.Location.Country,
		}
	}
	if m.Applications != nil {
		j.Applications = make([]domain.Application, 0, len(m.Applications))
		for _, a := range m.Applications {
			j.Applications = append(j.Applications, domain.Application{
				ApplicantID: parseID(a.ID),
				Resume:      a.Resume,
				AppliedAt:   a.AppliedAt,
			})
		}
	}
	return j
}

// parseID tolerates missing or legacy ids by mapping them to uuid.Nil.
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
