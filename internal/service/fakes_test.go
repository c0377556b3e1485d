package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/query"
)

type fakeJobRepo struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*domain.Job
	lastFind   query.Spec
	lastRadius float64
	created    int
}

func newFakeJobRepo(jobs ...*domain.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: make(map[uuid.UUID]*domain.Job)}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func clone(j *domain.Job) *domain.Job {
	c := *j
	c.Applications = append([]domain.Application(nil), j.Applications...)
	return &c
}

func (r *fakeJobRepo) get(id uuid.UUID) *domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id]
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = clone(job)
	r.created++
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID, withApplications bool) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.NotFound("Job not found")
	}
	c := clone(j)
	if !withApplications {
		c.Applications = nil
	}
	return c, nil
}

func (r *fakeJobRepo) GetByIDAndSlug(ctx context.Context, id uuid.UUID, slug string) (*domain.Job, error) {
	j, err := r.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if j.Slug != slug {
		return nil, domain.NotFound("Job not found")
	}
	return j, nil
}

func (r *fakeJobRepo) Find(_ context.Context, spec query.Spec) ([]*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFind = spec
	out := make([]*domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, clone(j))
	}
	return out, nil
}

func (r *fakeJobRepo) FindWithinRadius(_ context.Context, _, _, radius float64) ([]*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRadius = radius
	return []*domain.Job{}, nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok {
		return domain.NotFound("Job not found")
	}
	c := clone(job)
	c.Applications = existing.Applications
	c.Revision = existing.Revision + 1
	r.jobs[job.ID] = c
	job.Revision = c.Revision
	return nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return domain.NotFound("Job not found")
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) AddApplication(_ context.Context, jobID uuid.UUID, app domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.NotFound("Job not found")
	}
	if j.HasApplicant(app.ApplicantID) {
		return domain.NewError(domain.KindAlreadyApplied, "Already applied for this job", nil)
	}
	j.Applications = append(j.Applications, app)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]string
}

func (r *fakeUserRepo) GetSummary(_ context.Context, id uuid.UUID) (*domain.OwnerSummary, error) {
	name, ok := r.users[id]
	if !ok {
		return nil, domain.NotFound("User not found")
	}
	return &domain.OwnerSummary{ID: id, Name: name}, nil
}

type fakeGeocoder struct {
	points []domain.GeoPoint
	err    error
	calls  []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) ([]domain.GeoPoint, error) {
	g.calls = append(g.calls, address)
	return g.points, g.err
}

type fakeFiles struct {
	mu       sync.Mutex
	saved    map[string]string
	deleted  []string
	failSave error
	failDel  map[string]bool
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{saved: make(map[string]string), failDel: make(map[string]bool)}
}

func (f *fakeFiles) Save(ctx context.Context, name string, r io.Reader) error {
	if f.failSave != nil {
		return f.failSave
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[name] = string(data)
	return nil
}

func (f *fakeFiles) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, name)
	if f.failDel[name] {
		return errors.New("disk error")
	}
	delete(f.saved, name)
	return nil
}
