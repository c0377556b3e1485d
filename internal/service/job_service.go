package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"jobboard/internal/domain"
	"jobboard/internal/domain/dto"
	"jobboard/internal/geo"
	"jobboard/internal/query"
)

type JobService interface {
	List(ctx context.Context, params query.Params) ([]*domain.Job, error)
	SearchRadius(ctx context.Context, zipcode, distance string) ([]*domain.Job, error)
	Get(ctx context.Context, id uuid.UUID, slug string) (*domain.Job, error)
	Create(ctx context.Context, caller domain.Caller, req *dto.JobCreateRequest) (*domain.Job, error)
	Update(ctx context.Context, caller domain.Caller, id uuid.UUID, req *dto.JobUpdateRequest) (*domain.Job, error)
	Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error
}

type JobServiceConfig struct {
	DefaultLimit      int64
	MaxLimit          int64
	ApplicationWindow time.Duration
	StorageTimeout    time.Duration
	Now               func() time.Time
}

type jobService struct {
	jobRepo  domain.JobRepository
	userRepo domain.UserRepository
	geocoder domain.Geocoder
	files    domain.FileStore
	schema   *query.Schema
	cfg      JobServiceConfig
}

func NewJobService(
	jobRepo domain.JobRepository,
	userRepo domain.UserRepository,
	geocoder domain.Geocoder,
	files domain.FileStore,
	cfg JobServiceConfig,
) JobService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ApplicationWindow <= 0 {
		cfg.ApplicationWindow = domain.DefaultApplicationWindow
	}
	return &jobService{
		jobRepo:  jobRepo,
		userRepo: userRepo,
		geocoder: geocoder,
		files:    files,
		schema:   domain.NewJobQuerySchema(cfg.DefaultLimit, cfg.MaxLimit),
		cfg:      cfg,
	}
}

func (s *jobService) List(ctx context.Context, params query.Params) ([]*domain.Job, error) {
	spec, errs := query.Build(s.schema, params)
	if len(errs) > 0 {
		return nil, domain.Invalid("invalid query parameters", errs...)
	}
	return s.jobRepo.Find(ctx, spec)
}

// SearchRadius returns every job within distance miles of the zipcode.
func (s *jobService) SearchRadius(ctx context.Context, zipcode, distance string) ([]*domain.Job, error) {
	zipcode = strings.TrimSpace(zipcode)
	if zipcode == "" {
		return nil, domain.Invalid("Please provide a zipcode")
	}
	miles, err := strconv.ParseFloat(distance, 64)
	if err != nil || math.IsNaN(miles) || math.IsInf(miles, 0) || miles <= 0 {
		return nil, domain.Invalid("Please provide a valid distance")
	}

	points, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, domain.WrapTimeout(domain.KindInternal, "failed to geocode zipcode", err)
	}
	if len(points) == 0 {
		return nil, domain.NewError(domain.KindGeocodeNotFound, "Location not found for zipcode "+zipcode, nil)
	}

	center := points[0]
	return s.jobRepo.FindWithinRadius(ctx, center.Longitude, center.Latitude, geo.RadiusFromMiles(miles))
}

// Get loads one job by id and slug and attaches the owner's name.
func (s *jobService) Get(ctx context.Context, id uuid.UUID, slug string) (*domain.Job, error) {
	job, err := s.jobRepo.GetByIDAndSlug(ctx, id, slug)
	if err != nil {
		return nil, err
	}
	if job.OwnerID == uuid.Nil {
		return job, nil
	}

	owner, err := s.userRepo.GetSummary(ctx, job.OwnerID)
	switch {
	case err == nil:
		job.Owner = owner
	case domain.IsKind(err, domain.KindNotFound):
		log.Warn().Str("job_id", id.String()).Str("user_id", job.OwnerID.String()).Msg("job owner no longer exists")
	default:
		return nil, fmt.Errorf("failed to load job owner: %w", err)
	}
	return job, nil
}

func (s *jobService) Create(ctx context.Context, caller domain.Caller, req *dto.JobCreateRequest) (*domain.Job, error) {
	job := req.ToJob()
	job.OwnerID = caller.ID
	job.Sanitize()
	job.ApplyDefaults(s.cfg.Now(), s.cfg.ApplicationWindow)

	if err := job.Validate(); err != nil {
		return nil, err
	}
	jobSlug, err := titleSlug(job.Title)
	if err != nil {
		return nil, err
	}
	job.Slug = jobSlug

	location, err := s.locate(ctx, job.Address)
	if err != nil {
		return nil, err
	}
	job.Location = location

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	log.Info().Str("job_id", job.ID.String()).Str("user_id", caller.ID.String()).Msg("job created")
	return job, nil
}

func (s *jobService) Update(ctx context.Context, caller domain.Caller, id uuid.UUID, req *dto.JobUpdateRequest) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutate(caller, job) {
		return nil, domain.Forbidden("You are not allowed to update this job")
	}

	req.Sanitize()
	titleChanged, addressChanged := req.ApplyTo(job)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if titleChanged {
		if job.Slug, err = titleSlug(job.Title); err != nil {
			return nil, err
		}
	}
	if addressChanged {
		location, err := s.locate(ctx, job.Address)
		if err != nil {
			return nil, err
		}
		job.Location = location
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// titleSlug rejects titles with nothing a URL slug can keep.
func titleSlug(title string) (string, error) {
	s := slug.Make(title)
	if s == "" {
		return "", domain.ValidationErrors{{Field: "title", Message: "Please enter a title with letters or digits", Tag: "slug"}}.AsError()
	}
	return s, nil
}

// Delete removes the job after a best-effort cleanup of every stored resume.
func (s *jobService) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	job, err := s.jobRepo.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !domain.CanMutate(caller, job) {
		return domain.Forbidden("You are not allowed to delete this job")
	}

	for _, name := range job.ResumeFiles() {
		if err := s.deleteFile(ctx, name); err != nil {
			log.Warn().Err(err).Str("job_id", id.String()).Str("file", name).Msg("failed to delete resume")
		}
	}

	if err := s.jobRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("job_id", id.String()).Str("user_id", caller.ID.String()).Msg("job deleted")
	return nil
}

func (s *jobService) deleteFile(ctx context.Context, name string) error {
	if s.cfg.StorageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StorageTimeout)
		defer cancel()
	}
	return s.files.Delete(ctx, name)
}

// locate resolves an address to the first geocoder candidate.
func (s *jobService) locate(ctx context.Context, address string) (*domain.Location, error) {
	points, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, domain.WrapTimeout(domain.KindInternal, "failed to geocode address", err)
	}
	if len(points) == 0 {
		return nil, domain.NewError(domain.KindGeocodeNotFound, "Address could not be located", nil)
	}

	p := points[0]
	return &domain.Location{
		Type:             "Point",
		Coordinates:      []float64{p.Longitude, p.Latitude},
		FormattedAddress: p.FormattedAddress,
		City:             p.City,
		State:            p.StateCode,
		Zipcode:          p.Zipcode,
		Country:          p.CountryCode,
	}, nil
}
