// internal/domain/interface.go
package domain

import (
	"context"
	"io"

	"github.com/google/uuid"

	"jobboard/internal/query"
)

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	// GetByID loads a job; withApplications includes the normally hidden list.
	GetByID(ctx context.Context, id uuid.UUID, withApplications bool) (*Job, error)
	GetByIDAndSlug(ctx context.Context, id uuid.UUID, slug string) (*Job, error)
	Find(ctx context.Context, spec query.Spec) ([]*Job, error)
	FindWithinRadius(ctx context.Context, longitude, latitude, radius float64) ([]*Job, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AddApplication appends atomically and fails with KindAlreadyApplied if
	// the applicant is already present.
	AddApplication(ctx context.Context, jobID uuid.UUID, app Application) error
}

type UserRepository interface {
	GetSummary(ctx context.Context, id uuid.UUID) (*OwnerSummary, error)
}

// GeoPoint is one geocoder candidate.
type GeoPoint struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
	City             string  `json:"city"`
	StateCode        string  `json:"stateCode"`
	Zipcode          string  `json:"zipcode"`
	CountryCode      string  `json:"countryCode"`
}

// Geocoder resolves an address or postal code; an empty slice means not found.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]GeoPoint, error)
}

// FileStore persists uploaded documents by name.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Delete(ctx context.Context, name string) error
}
