package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/validation"
)

// Job event types.
const (
	EventCreated       = "CREATED"
	EventStatusChanged = "STATUS_CHANGED"
)

type JobService struct {
	crud[models.Job, repository.JobFilter]
	db    *gorm.DB
	repos *repository.Repositories
	llm   *LLMService
}

func NewJobService(db *gorm.DB, repos *repository.Repositories, schema validation.Schema, llm *LLMService) *JobService {
	return &JobService{
		crud:  crud[models.Job, repository.JobFilter]{repo: repos.Jobs, schema: schema},
		db:    db,
		repos: repos,
		llm:   llm,
	}
}

// Create posts a job for an existing company and records the first event.
func (s *JobService) Create(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	req.TechStack = cleanList(req.TechStack)
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.JobStatusOpen
	}

	var job *models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		company, err := repos.Companies.FindByID(ctx, req.CompanyID)
		if err != nil {
			return err
		}
		job, err = repos.Jobs.Create(ctx, &models.Job{
			CompanyID:   company.ID,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			SalaryRange: req.SalaryRange,
			TechStack:   strings.Join(req.TechStack, ","),
			JobLink:     req.JobLink,
			Status:      status,
		})
		if err != nil {
			return err
		}
		_, err = repos.JobEvents.Create(ctx, &models.JobEvent{JobID: job.ID, EventType: EventCreated, Details: status})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, job.ID)
}

func (s *JobService) Update(ctx context.Context, id string, req *dtos.JobUpdateRequest) (*models.Job, error) {
	cleanListPtr(req.TechStack)
	return s.patch(ctx, id, req, "tech_stack")
}

// Delete removes the job together with its event history.
func (s *JobService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.JobEvent{}).Error; err != nil {
			return err
		}
		_, err := s.repos.Jobs.WithTx(tx).Delete(ctx, id)
		return err
	})
}

// ChangeStatus moves the job to req.Status and records the transition. Asking
// for the current status changes nothing.
func (s *JobService) ChangeStatus(ctx context.Context, id string, req *dtos.JobStatusRequest) (*models.Job, error) {
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	var job *models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		current, err := repos.Jobs.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == req.Status {
			job = current
			return nil
		}
		if job, err = repos.Jobs.Update(ctx, id, map[string]any{"status": req.Status}); err != nil {
			return err
		}
		details := fmt.Sprintf("%s -> %s", current.Status, req.Status)
		if req.Note != "" {
			details += ": " + req.Note
		}
		_, err = repos.JobEvents.Create(ctx, &models.JobEvent{JobID: id, EventType: EventStatusChanged, Details: details})
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Events lists the history of a job, newest first unless f sorts otherwise.
func (s *JobService) Events(ctx context.Context, jobID string, f repository.JobEventFilter) (*repository.Page[models.JobEvent], error) {
	if err := validation.Validate(s.schema, &f); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	f.JobID = jobID
	return s.repos.JobEvents.FindMany(ctx, f)
}

// Extract turns a raw posting page into a draft the client can review before
// creating the job.
func (s *JobService) Extract(ctx context.Context, req *dtos.JobExtractionRequest) (*dtos.JobDraft, error) {
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	draft, err := s.llm.ExtractJobDetails(ctx, req.RawHTML)
	if err != nil {
		return nil, err
	}
	if draft.JobLink == "" {
		draft.JobLink = req.URL
	}
	return draft, nil
}
