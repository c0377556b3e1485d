package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"jobboard/internal/domain"
)

// DefaultMaxFileSize is the resume size limit when none is configured.
const DefaultMaxFileSize int64 = 2 << 20

var allowedResumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Upload is a client file that has not been read yet.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type ApplicationService interface {
	// Apply stores the resume and records the application. It returns the
	// stored file name.
	Apply(ctx context.Context, applicant domain.Caller, jobID uuid.UUID, file *Upload) (string, error)
}

type ApplicationServiceConfig struct {
	MaxFileSize    int64
	StorageTimeout time.Duration
	Now            func() time.Time
}

type applicationService struct {
	jobRepo domain.JobRepository
	files   domain.FileStore
	cfg     ApplicationServiceConfig
}

func NewApplicationService(jobRepo domain.JobRepository, files domain.FileStore, cfg ApplicationServiceConfig) ApplicationService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &applicationService{jobRepo: jobRepo, files: files, cfg: cfg}
}

func (s *applicationService) Apply(ctx context.Context, applicant domain.Caller, jobID uuid.UUID, file *Upload) (string, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID, true)
	if err != nil {
		return "", err
	}

	if job.DeadlinePassed(s.cfg.Now()) {
		return "", domain.NewError(domain.KindExpired, "You can not apply to this job. Last date is over.", nil)
	}
	if job.HasApplicant(applicant.ID) {
		return "", domain.NewError(domain.KindAlreadyApplied, "You have already applied for this job", nil)
	}

	if file == nil || file.Open == nil {
		return "", domain.NewError(domain.KindMissingFile, "Please upload file.", nil)
	}
	ext := filepath.Ext(filepath.Base(file.Filename))
	if !allowedResumeExtensions[ext] {
		return "", domain.NewError(domain.KindUnsupportedFileType, "Please upload document file.", nil)
	}
	if file.Size > s.cfg.MaxFileSize {
		return "", FileTooLarge(s.cfg.MaxFileSize)
	}

	name := ResumeFileName(applicant.Name, job.ID, ext)
	if err := s.store(ctx, name, file); err != nil {
		return "", err
	}

	app := domain.Application{ApplicantID: applicant.ID, Resume: name, AppliedAt: s.cfg.Now()}
	if err := s.jobRepo.AddApplication(ctx, job.ID, app); err != nil {
		// The name is derived from the applicant and the job, so on a lost race
		// the file on disk belongs to the winning request and is kept.
		return "", err
	}

	log.Info().Str("job_id", job.ID.String()).Str("user_id", applicant.ID.String()).Str("file", name).Msg("application submitted")
	return name, nil
}

// FileTooLarge reports a resume over limit bytes.
func FileTooLarge(limit int64) error {
	return domain.NewError(domain.KindFileTooLarge,
		fmt.Sprintf("Please upload file less than %s.", formatSize(limit)), nil)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func (s *applicationService) store(ctx context.Context, name string, file *Upload) error {
	if s.cfg.StorageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StorageTimeout)
		defer cancel()
	}

	rc, err := file.Open()
	if err != nil {
		return domain.NewError(domain.KindStorage, "Resume upload failed.", err)
	}
	defer rc.Close()

	if err := s.files.Save(ctx, name, rc); err != nil {
		return domain.WrapTimeout(domain.KindStorage, "Resume upload failed.", err)
	}
	return nil
}

// ResumeFileName builds {applicant name}_{job id}{ext} with the name reduced
// to a path-safe form.
func ResumeFileName(applicantName string, jobID uuid.UUID, ext string) string {
	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(applicantName), "_") {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "applicant"
	}
	return name + "_" + jobID.String() + ext
}
