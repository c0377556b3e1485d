package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/domain/dto"
	"jobboard/internal/middleware"
	"jobboard/internal/query"
	"jobboard/internal/security"
	"jobboard/internal/service"
)

const testSecret = "handler-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubJobService struct {
	jobs       []*domain.Job
	err        error
	params     query.Params
	zipcode    string
	distance   string
	caller     domain.Caller
	createReq  *dto.JobCreateRequest
	updateReq  *dto.JobUpdateRequest
	id         uuid.UUID
	deleteCall int
}

func (s *stubJobService) List(_ context.Context, params query.Params) ([]*domain.Job, error) {
	s.params = params
	return s.jobs, s.err
}

func (s *stubJobService) SearchRadius(_ context.Context, zipcode, distance string) ([]*domain.Job, error) {
	s.zipcode, s.distance = zipcode, distance
	return s.jobs, s.err
}

func (s *stubJobService) Get(_ context.Context, id uuid.UUID, _ string) (*domain.Job, error) {
	s.id = id
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Job{ID: id, Title: "Go Developer"}, nil
}

func (s *stubJobService) Create(_ context.Context, caller domain.Caller, req *dto.JobCreateRequest) (*domain.Job, error) {
	s.caller, s.createReq = caller, req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Job{ID: uuid.New(), Title: req.Title, OwnerID: caller.ID}, nil
}

func (s *stubJobService) Update(_ context.Context, caller domain.Caller, id uuid.UUID, req *dto.JobUpdateRequest) (*domain.Job, error) {
	s.caller, s.id, s.updateReq = caller, id, req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Job{ID: id}, nil
}

func (s *stubJobService) Delete(_ context.Context, caller domain.Caller, id uuid.UUID) error {
	s.caller, s.id = caller, id
	s.deleteCall++
	return s.err
}

type stubApplicationService struct {
	upload  *service.Upload
	content string
	err     error
}

func (s *stubApplicationService) Apply(_ context.Context, applicant domain.Caller, jobID uuid.UUID, file *service.Upload) (string, error) {
	s.upload = file
	if s.err != nil {
		return "", s.err
	}
	if file == nil {
		return "", domain.NewError(domain.KindMissingFile, "Please upload file.", nil)
	}
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	s.content = string(data)
	return applicant.Name + "_" + jobID.String() + ".pdf", nil
}

type testServer struct {
	router *gin.Engine
	jobs   *stubJobService
	apps   *stubApplicationService
}

func newTestServer(applyLimit int, checks map[string]Pinger) *testServer {
	return newTestServerWithFileLimit(applyLimit, checks, service.DefaultMaxFileSize)
}

func newTestServerWithFileLimit(applyLimit int, checks map[string]Pinger, maxFileSize int64) *testServer {
	ts := &testServer{jobs: &stubJobService{}, apps: &stubApplicationService{}}
	ts.router = gin.New()
	RegisterRoutes(ts.router.Group("/api/v1"),
		NewJobHandler(ts.jobs, ts.apps, maxFileSize),
		NewHealthHandler(checks),
		RouteConfig{
			JWTSecret:   testSecret,
			Limiter:     middleware.NewLocalLimiter(),
			ApplyLimit:  applyLimit,
			ApplyWindow: time.Minute,
		})
	return ts
}

func token(t *testing.T, caller domain.Caller) string {
	t.Helper()
	tok, err := security.IssueToken(testSecret, caller, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return "Bearer " + tok
}

func (ts *testServer) do(req *http.Request, auth string) (*httptest.ResponseRecorder, map[string]any) {
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func jsonRequest(method, path string, v any) *http.Request {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = fw.Write([]byte(content))
	} else {
		_ = mw.WriteField("note", "no file")
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGetJobs(t *testing.T) {
	ts := newTestServer(3, nil)
	ts.jobs.jobs = []*domain.Job{{ID: uuid.New()}, {ID: uuid.New()}}

	w, body := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/jobs?salary[gte]=100&page=2", nil), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["success"] != true || body["results"] != float64(2) {
		t.Fatalf("body = %v", body)
	}
	if got := ts.jobs.params["salary[gte]"]; len(got) != 1 || got[0] != "100" {
		t.Fatalf("params = %v", ts.jobs.params)
	}
}

func TestGetJobsValidationError(t *testing.T) {
	ts := newTestServer(3, nil)
	ts.jobs.err = domain.Invalid("invalid query parameters", "salary: not a number")

	w, body := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/jobs?salary[gt]=x", nil), "")
	if w.Code != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
}

func TestGetJobsInRadius(t *testing.T) {
	ts := newTestServer(3, nil)

	w, _ := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/02108/25", nil), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ts.jobs.zipcode != "02108" || ts.jobs.distance != "25" {
		t.Fatalf("zipcode/distance = %s/%s", ts.jobs.zipcode, ts.jobs.distance)
	}

	ts.jobs.err = domain.NewError(domain.KindGeocodeNotFound, "Location not found", nil)
	if w, _ := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/00000/25", nil), ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetJob(t *testing.T) {
	ts := newTestServer(3, nil)
	id := uuid.New()

	w, body := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/job/"+id.String()+"/go-developer", nil), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data, _ := body["data"].(map[string]any)
	if data["_id"] != id.String() {
		t.Fatalf("data = %v", data)
	}

	if w, _ := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/job/not-a-uuid/x", nil), ""); w.Code != http.StatusNotFound {
		t.Fatalf("invalid id status = %d", w.Code)
	}
}

func TestNewJobAuthorization(t *testing.T) {
	ts := newTestServer(3, nil)
	employer := domain.Caller{ID: uuid.New(), Name: "Acme", Role: domain.RoleEmployer}
	user := domain.Caller{ID: uuid.New(), Name: "Jane", Role: domain.RoleUser}
	req := map[string]any{"title": "Go Developer"}

	if w, _ := ts.do(jsonRequest(http.MethodPost, "/api/v1/job/new", req), ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	if w, _ := ts.do(jsonRequest(http.MethodPost, "/api/v1/job/new", req), token(t, user)); w.Code != http.StatusForbidden {
		t.Fatalf("user status = %d", w.Code)
	}

	w, body := ts.do(jsonRequest(http.MethodPost, "/api/v1/job/new", req), token(t, employer))
	if w.Code != http.StatusCreated {
		t.Fatalf("employer status = %d (%v)", w.Code, body)
	}
	if body["message"] != "Job Created." {
		t.Fatalf("body = %v", body)
	}
	if ts.jobs.caller.ID != employer.ID || ts.jobs.createReq.Title != "Go Developer" {
		t.Fatalf("service got caller %+v req %+v", ts.jobs.caller, ts.jobs.createReq)
	}
}

func TestNewJobMalformedBody(t *testing.T) {
	ts := newTestServer(3, nil)
	employer := domain.Caller{ID: uuid.New(), Role: domain.RoleEmployer}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/job/new", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	if w, _ := ts.do(req, token(t, employer)); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUpdateJobForbidden(t *testing.T) {
	ts := newTestServer(3, nil)
	ts.jobs.err = domain.Forbidden("You are not allowed to update this job")
	employer := domain.Caller{ID: uuid.New(), Role: domain.RoleEmployer}
	id := uuid.New()

	w, body := ts.do(jsonRequest(http.MethodPut, "/api/v1/job/"+id.String(), map[string]any{"title": "x"}), token(t, employer))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	if body["errMessage"] != "You are not allowed to update this job" {
		t.Fatalf("body = %v", body)
	}
	if ts.jobs.id != id || ts.jobs.updateReq.Title == nil {
		t.Fatalf("service got id %s req %+v", ts.jobs.id, ts.jobs.updateReq)
	}
}

func TestDeleteJob(t *testing.T) {
	ts := newTestServer(3, nil)
	admin := domain.Caller{ID: uuid.New(), Role: domain.RoleAdmin}

	w, body := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/job/"+uuid.NewString(), nil), token(t, admin))
	if w.Code != http.StatusOK || body["message"] != "Job is deleted." {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if ts.jobs.deleteCall != 1 {
		t.Fatalf("delete calls = %d", ts.jobs.deleteCall)
	}
}

func TestApplyJob(t *testing.T) {
	ts := newTestServer(3, nil)
	user := domain.Caller{ID: uuid.New(), Name: "Jane", Role: domain.RoleUser}
	id := uuid.New()

	w, body := ts.do(multipartRequest(t, "/api/v1/job/"+id.String()+"/apply", "file", "cv.pdf", "resume"), token(t, user))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if body["data"] != "Jane_"+id.String()+".pdf" {
		t.Fatalf("body = %v", body)
	}
	if ts.apps.upload.Filename != "cv.pdf" || ts.apps.upload.Size != 6 || ts.apps.content != "resume" {
		t.Fatalf("upload = %+v content = %q", ts.apps.upload, ts.apps.content)
	}
}

func TestApplyJobUsesFirstFile(t *testing.T) {
	ts := newTestServer(3, nil)
	user := domain.Caller{ID: uuid.New(), Name: "Jane", Role: domain.RoleUser}

	w, _ := ts.do(multipartRequest(t, "/api/v1/job/"+uuid.NewString()+"/apply", "resume", "cv.docx", "doc"), token(t, user))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ts.apps.upload == nil || ts.apps.upload.Filename != "cv.docx" {
		t.Fatalf("upload = %+v", ts.apps.upload)
	}
}

func TestApplyJobWithoutFile(t *testing.T) {
	ts := newTestServer(3, nil)
	user := domain.Caller{ID: uuid.New(), Name: "Jane", Role: domain.RoleUser}

	w, body := ts.do(multipartRequest(t, "/api/v1/job/"+uuid.NewString()+"/apply", "", "", ""), token(t, user))
	if w.Code != http.StatusBadRequest || body["errMessage"] != "Please upload file." {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if ts.apps.upload != nil {
		t.Fatalf("upload = %+v", ts.apps.upload)
	}
}

func TestApplyJobOversizedBodyIsCutOff(t *testing.T) {
	ts := newTestServerWithFileLimit(3, nil, 10)
	user := domain.Caller{ID: uuid.New(), Name: "Jane", Role: domain.RoleUser}
	content := strings.Repeat("x", int(multipartSlack)+1024)

	w, body := ts.do(multipartRequest(t, "/api/v1/job/"+uuid.NewString()+"/apply", "file", "cv.pdf", content), token(t, user))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if body["errMessage"] != "Please upload file less than 10 bytes." {
		t.Fatalf("body = %v", body)
	}
	if ts.apps.upload != nil {
		t.Fatalf("service saw upload %+v", ts.apps.upload)
	}
}

func TestApplyJobRequiresUserRole(t *testing.T) {
	ts := newTestServer(3, nil)
	employer := domain.Caller{ID: uuid.New(), Role: domain.RoleEmployer}

	w, _ := ts.do(multipartRequest(t, "/api/v1/job/"+uuid.NewString()+"/apply", "file", "cv.pdf", "x"), token(t, employer))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestApplyJobRateLimited(t *testing.T) {
	ts := newTestServer(1, nil)
	user := domain.Caller{ID: uuid.New(), Name: "Jane", Role: domain.RoleUser}
	path := "/api/v1/job/" + uuid.NewString() + "/apply"

	if w, _ := ts.do(multipartRequest(t, path, "file", "cv.pdf", "x"), token(t, user)); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	if w, _ := ts.do(multipartRequest(t, path, "file", "cv.pdf", "x"), token(t, user)); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	ts := newTestServer(3, map[string]Pinger{"mongo": ok, "redis": ok})
	if w, _ := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), ""); w.Code != http.StatusOK {
		t.Fatalf("healthy status = %d", w.Code)
	}

	ts = newTestServer(3, map[string]Pinger{"mongo": ok, "redis": down})
	w, body := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded status = %d", w.Code)
	}
	services, _ := body["services"].(map[string]any)
	if services["redis"] != "unavailable" || services["mongo"] != "connected" {
		t.Fatalf("services = %v", services)
	}
}
