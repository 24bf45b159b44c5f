package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/justsurfingit/jobboard/internal/models"
)

type (
	UserRepository     = Repository[models.User, UserFilter]
	AdminRepository    = Repository[models.Admin, AdminFilter]
	SeekerRepository   = Repository[models.Seeker, SeekerFilter]
	CompanyRepository  = Repository[models.Company, CompanyFilter]
	JobRepository      = Repository[models.Job, JobFilter]
	JobEventRepository = Repository[models.JobEvent, JobEventFilter]
)

type UserFilter struct {
	Query
	ID    string `form:"id" json:"id,omitempty"`
	Email string `form:"email" json:"email,omitempty" validate:"omitempty,email"`
	Role  string `form:"role" json:"role,omitempty" validate:"omitempty,oneof=seeker company admin"`
}

type AdminFilter struct {
	Query
	ID     string `form:"id" json:"id,omitempty"`
	UserID string `form:"user_id" json:"user_id,omitempty"`
}

type SeekerFilter struct {
	Query
	ID     string `form:"id" json:"id,omitempty"`
	UserID string `form:"user_id" json:"user_id,omitempty"`
}

type CompanyFilter struct {
	Query
	ID     string `form:"id" json:"id,omitempty"`
	UserID string `form:"user_id" json:"user_id,omitempty"`
}

type JobFilter struct {
	Query
	ID        string `form:"id" json:"id,omitempty"`
	CompanyID string `form:"company_id" json:"company_id,omitempty"`
	Status    string `form:"status" json:"status,omitempty" validate:"omitempty,oneof=DRAFT OPEN CLOSED"`
}

type JobEventFilter struct {
	Query
	JobID     string `form:"job_id" json:"job_id,omitempty"`
	EventType string `form:"event_type" json:"event_type,omitempty"`
}

func NewUserRepository(db *gorm.DB) (*UserRepository, error) {
	return New(db, Spec[models.User, UserFilter]{
		Resource: "user",
		Exact: func(f UserFilter) map[string]string {
			return map[string]string{"id": f.ID, "email": strings.ToLower(strings.TrimSpace(f.Email)), "role": f.Role}
		},
		Search: []string{"email", "name"},
	})
}

func NewAdminRepository(db *gorm.DB) (*AdminRepository, error) {
	return New(db, Spec[models.Admin, AdminFilter]{
		Resource: "admin",
		Exact: func(f AdminFilter) map[string]string {
			return map[string]string{"id": f.ID, "user_id": f.UserID}
		},
		Search:  []string{"title", "users.email"},
		Joins:   []string{"LEFT JOIN users ON users.id = admins.user_id"},
		Preload: []string{"User"},
	})
}

func NewSeekerRepository(db *gorm.DB) (*SeekerRepository, error) {
	return New(db, Spec[models.Seeker, SeekerFilter]{
		Resource: "seeker",
		Exact: func(f SeekerFilter) map[string]string {
			return map[string]string{"id": f.ID, "user_id": f.UserID}
		},
		Search:  []string{"full_name", "headline", "location", "skills", "users.email"},
		Joins:   []string{"LEFT JOIN users ON users.id = seekers.user_id"},
		Preload: []string{"User"},
	})
}

func NewCompanyRepository(db *gorm.DB) (*CompanyRepository, error) {
	return New(db, Spec[models.Company, CompanyFilter]{
		Resource: "company",
		Exact: func(f CompanyFilter) map[string]string {
			return map[string]string{"id": f.ID, "user_id": f.UserID}
		},
		Search:  []string{"name", "description", "location", "users.email"},
		Joins:   []string{"LEFT JOIN users ON users.id = companies.user_id"},
		Preload: []string{"User"},
	})
}

func NewJobRepository(db *gorm.DB) (*JobRepository, error) {
	return New(db, Spec[models.Job, JobFilter]{
		Resource: "job",
		Exact: func(f JobFilter) map[string]string {
			return map[string]string{"id": f.ID, "company_id": f.CompanyID, "status": f.Status}
		},
		Search:  []string{"title", "description", "location", "companies.name"},
		Joins:   []string{"LEFT JOIN companies ON companies.id = jobs.company_id"},
		Preload: []string{"Company"},
	})
}

func NewJobEventRepository(db *gorm.DB) (*JobEventRepository, error) {
	return New(db, Spec[models.JobEvent, JobEventFilter]{
		Resource: "job event",
		Exact: func(f JobEventFilter) map[string]string {
			return map[string]string{"job_id": f.JobID, "event_type": f.EventType}
		},
		Search: []string{"details"},
	})
}

// Repositories groups the per-entity repositories sharing one connection pool.
type Repositories struct {
	Users     *UserRepository
	Admins    *AdminRepository
	Seekers   *SeekerRepository
	Companies *CompanyRepository
	Jobs      *JobRepository
	JobEvents *JobEventRepository
}

// NewRepositories builds every repository over db.
func NewRepositories(db *gorm.DB) (*Repositories, error) {
	var (
		repos Repositories
		err   error
	)
	if repos.Users, err = NewUserRepository(db); err != nil {
		return nil, err
	}
	if repos.Admins, err = NewAdminRepository(db); err != nil {
		return nil, err
	}
	if repos.Seekers, err = NewSeekerRepository(db); err != nil {
		return nil, err
	}
	if repos.Companies, err = NewCompanyRepository(db); err != nil {
		return nil, err
	}
	if repos.Jobs, err = NewJobRepository(db); err != nil {
		return nil, err
	}
	if repos.JobEvents, err = NewJobEventRepository(db); err != nil {
		return nil, err
	}
	return &repos, nil
}

// WithTx binds every repository to tx.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return &Repositories{
		Users:     r.Users.WithTx(tx),
		Admins:    r.Admins.WithTx(tx),
		Seekers:   r.Seekers.WithTx(tx),
		Companies: r.Companies.WithTx(tx),
		Jobs:      r.Jobs.WithTx(tx),
		JobEvents: r.JobEvents.WithTx(tx),
	}
}
