package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jobboard/internal/domain"
	"jobboard/internal/geo"
	"jobboard/internal/query"
)

const (
	colJobs  = "jobs"
	colUsers = "users"
)

type mongoJobRepository struct {
	col *mongo.Collection
}

func NewJobRepository(db *mongo.Database) domain.JobRepository {
	return &mongoJobRepository{col: db.Collection(colJobs)}
}

// publicProjection hides the revision counter and the application list.
func publicProjection() bson.M {
	return bson.M{domain.FieldRevision: 0, domain.FieldApplications: 0}
}

func (r *mongoJobRepository) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.col.InsertOne(ctx, toJobModel(job))
	if err != nil {
		if isDuplicateKey(err) {
			return domain.NewError(domain.KindDuplicate, "Duplicate _id entered", err)
		}
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to create job")
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *mongoJobRepository) GetByID(ctx context.Context, id uuid.UUID, withApplications bool) (*domain.Job, error) {
	opts := options.FindOne()
	if !withApplications {
		opts.SetProjection(bson.M{domain.FieldApplications: 0})
	}
	return r.findOne(ctx, bson.M{"_id": id.String()}, opts)
}

func (r *mongoJobRepository) GetByIDAndSlug(ctx context.Context, id uuid.UUID, slug string) (*domain.Job, error) {
	filter := bson.M{"_id": id.String(), domain.FieldSlug: slug}
	return r.findOne(ctx, filter, options.FindOne().SetProjection(publicProjection()))
}

func (r *mongoJobRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptionsBuilder) (*domain.Job, error) {
	var m jobModel
	err := r.col.FindOne(ctx, filter, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("Job not found")
		}
		log.Error().Err(err).Msg("failed to load job")
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return fromJobModel(&m), nil
}

func (r *mongoJobRepository) Find(ctx context.Context, spec query.Spec) ([]*domain.Job, error) {
	opts := options.Find()
	if len(spec.Sort) > 0 {
		opts.SetSort(spec.Sort)
	}
	if len(spec.Projection) > 0 {
		opts.SetProjection(spec.Projection)
	}
	if spec.Skip > 0 {
		opts.SetSkip(spec.Skip)
	}
	if spec.Limit > 0 {
		opts.SetLimit(spec.Limit)
	}
	filter := spec.Filter
	if filter == nil {
		filter = bson.M{}
	}
	return r.find(ctx, filter, opts)
}

// FindWithinRadius returns every job inside the sphere; results are not paginated.
func (r *mongoJobRepository) FindWithinRadius(ctx context.Context, longitude, latitude, radius float64) ([]*domain.Job, error) {
	filter := geo.WithinSphere(domain.FieldLocation, longitude, latitude, radius)
	return r.find(ctx, filter, options.Find().SetProjection(publicProjection()))
}

func (r *mongoJobRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*domain.Job, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to query jobs")
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := make([]*domain.Job, 0)
	for cursor.Next(ctx) {
		var m jobModel
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, fromJobModel(&m))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return jobs, nil
}

// Update rewrites the mutable fields. The application list is never touched
// here so concurrent applies are not lost.
func (r *mongoJobRepository) Update(ctx context.Context, job *domain.Job) error {
	m := toJobModel(job)
	update := updateDocument(m)

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": m.ID}, update)
	if err != nil {
		log.Error().Err(err).Str("job_id", m.ID).Msg("failed to update job")
		return fmt.Errorf("failed to update job: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("Job not found")
	}
	job.Revision++
	return nil
}

func (r *mongoJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		log.Error().Err(err).Str("job_id", id.String()).Msg("failed to delete job")
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("Job not found")
	}
	return nil
}

// AddApplication pushes the application only when the applicant is not yet
// in the list, so two racing applies cannot both succeed.
func (r *mongoJobRepository) AddApplication(ctx context.Context, jobID uuid.UUID, app domain.Application) error {
	res, err := r.col.UpdateOne(ctx, applicationFilter(jobID, app.ApplicantID), pushApplication(app))
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("failed to append application")
		return fmt.Errorf("failed to append application: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": jobID.String()})
	if err != nil {
		return fmt.Errorf("failed to check job existence: %w", err)
	}
	if n == 0 {
		return domain.NotFound("Job not found")
	}
	return domain.NewError(domain.KindAlreadyApplied, "Already applied for this job", nil)
}

// updateDocument sets every mutable field and bumps the revision. Owner, id,
// posting date and applications are left out.
func updateDocument(m *jobModel) bson.M {
	set := bson.M{
		"title":        m.Title,
		"slug":         m.Slug,
		"description":  m.Description,
		"email":        m.Email,
		"address":      m.Address,
		"location":     m.Location,
		"company":      m.Company,
		"industry":     m.Industry,
		"jobType":      m.JobType,
		"minEducation": m.MinEducation,
		"positions":    m.Positions,
		"experience":   m.Experience,
		"salary":       m.Salary,
		"lastDate":     m.LastDate,
	}
	return bson.M{"$set": set, "$inc": bson.M{domain.FieldRevision: 1}}
}

// applicationFilter matches the job only while applicantID is absent from
// its application list.
func applicationFilter(jobID, applicantID uuid.UUID) bson.M {
	filter := bson.M{"_id": jobID.String()}
	filter[domain.FieldApplications+".id"] = bson.M{"$ne": applicantID.String()}
	return filter
}

func pushApplication(app domain.Application) bson.M {
	return bson.M{"$push": bson.M{domain.FieldApplications: toApplicationModel(app)}}
}

// EnsureIndexes creates the geo, listing and lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldLocation, Value: "2dsphere"}}},
		{Keys: bson.D{{Key: domain.FieldPostingDate, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldSlug, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldOwner, Value: 1}}},
	}
	if _, err := db.Collection(colJobs).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}
	return nil
}

// isDuplicateKey checks if a MongoDB error is a duplicate key violation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
