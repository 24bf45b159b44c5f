package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/notify"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/validation"
)

var ErrStorageDisabled = errors.New("resume storage is not configured")

// ResumeStore keeps uploaded resumes and hands out links to them.
type ResumeStore interface {
	Put(ctx context.Context, seekerID, filename, contentType string, body io.ReadSeeker, size int64) (string, error)
	URL(ctx context.Context, link string) (string, error)
}

// accounts creates a user and its role profile together.
type accounts struct {
	db      *gorm.DB
	repos   *repository.Repositories
	welcome welcomer
}

func newAccounts(db *gorm.DB, repos *repository.Repositories, mailer notify.Mailer, log *zap.Logger) accounts {
	return accounts{db: db, repos: repos, welcome: welcomer{mailer: mailer, log: log}}
}

// register runs create with the new user inside one transaction, then greets
// the account once the transaction has committed.
func (a accounts) register(ctx context.Context, creds dtos.Credentials, name, role string, create func(*repository.Repositories, *models.User) error) (*models.User, error) {
	user, err := newUser(creds, name, role)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := a.repos.WithTx(tx)
		if _, err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return create(repos, user)
	})
	if err != nil {
		return nil, err
	}
	a.welcome.send(ctx, role, name, user.Email)
	return user, nil
}

type UserService struct {
	crud[models.User, repository.UserFilter]
}

func NewUserService(repos *repository.Repositories, schema validation.Schema) *UserService {
	return &UserService{crud: crud[models.User, repository.UserFilter]{repo: repos.Users, schema: schema}}
}

// Create adds a bare account without a profile.
func (s *UserService) Create(ctx context.Context, req *dtos.UserCreateRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleSeeker
	}
	user, err := newUser(req.Credentials, req.Name, role)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, user)
}

func (s *UserService) Update(ctx context.Context, id string, req *dtos.UserUpdateRequest) (*models.User, error) {
	if req.Email != nil {
		*req.Email = normalizeEmail(*req.Email)
	}
	trimPtr(req.Name)
	return s.patch(ctx, id, req)
}

func (s *UserService) List(ctx context.Context, f repository.UserFilter) (*repository.Page[models.User], error) {
	f.Email = normalizeEmail(f.Email)
	return s.crud.List(ctx, f)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	_, err := s.repo.Delete(ctx, id)
	return err
}

type AdminService struct {
	crud[models.Admin, repository.AdminFilter]
	accounts
}

func NewAdminService(db *gorm.DB, repos *repository.Repositories, schema validation.Schema, mailer notify.Mailer, log *zap.Logger) *AdminService {
	return &AdminService{
		crud:     crud[models.Admin, repository.AdminFilter]{repo: repos.Admins, schema: schema},
		accounts: newAccounts(db, repos, mailer, log),
	}
}

func (s *AdminService) Create(ctx context.Context, req *dtos.AdminRegisterRequest) (*models.Admin, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	var admin *models.Admin
	user, err := s.register(ctx, req.Credentials, req.Name, models.RoleAdmin, func(repos *repository.Repositories, user *models.User) (err error) {
		admin, err = repos.Admins.Create(ctx, &models.Admin{UserID: user.ID, Title: req.Title})
		return err
	})
	if err != nil {
		return nil, err
	}
	admin.User = user
	return admin, nil
}

func (s *AdminService) Update(ctx context.Context, id string, req *dtos.AdminUpdateRequest) (*models.Admin, error) {
	return s.patch(ctx, id, req)
}

func (s *AdminService) Delete(ctx context.Context, id string) error {
	return deleteWithOwner(ctx, s.db, s.repos, id,
		func(r *repository.Repositories) *repository.AdminRepository { return r.Admins },
		func(a *models.Admin) string { return a.UserID },
		nil,
	)
}

type SeekerService struct {
	crud[models.Seeker, repository.SeekerFilter]
	accounts
	resumes ResumeStore
}

// NewSeekerService builds the service. resumes may be nil when uploads are
// not configured.
func NewSeekerService(db *gorm.DB, repos *repository.Repositories, schema validation.Schema, mailer notify.Mailer, resumes ResumeStore, log *zap.Logger) *SeekerService {
	return &SeekerService{
		crud:     crud[models.Seeker, repository.SeekerFilter]{repo: repos.Seekers, schema: schema},
		accounts: newAccounts(db, repos, mailer, log),
		resumes:  resumes,
	}
}

func (s *SeekerService) Create(ctx context.Context, req *dtos.SeekerRegisterRequest) (*models.Seeker, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Skills = cleanList(req.Skills)
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	var seeker *models.Seeker
	user, err := s.register(ctx, req.Credentials, req.FullName, models.RoleSeeker, func(repos *repository.Repositories, user *models.User) (err error) {
		seeker, err = repos.Seekers.Create(ctx, &models.Seeker{
			UserID:     user.ID,
			FullName:   req.FullName,
			Headline:   req.Headline,
			Location:   req.Location,
			Skills:     strings.Join(req.Skills, ","),
			ResumeLink: req.ResumeLink,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	seeker.User = user
	return seeker, nil
}

func (s *SeekerService) Update(ctx context.Context, id string, req *dtos.SeekerUpdateRequest) (*models.Seeker, error) {
	trimPtr(req.FullName)
	cleanListPtr(req.Skills)
	return s.patch(ctx, id, req, "skills")
}

func (s *SeekerService) Delete(ctx context.Context, id string) error {
	return deleteWithOwner(ctx, s.db, s.repos, id,
		func(r *repository.Repositories) *repository.SeekerRepository { return r.Seekers },
		func(p *models.Seeker) string { return p.UserID },
		nil,
	)
}

// UploadResume stores the file and points the seeker's resume link at it.
func (s *SeekerService) UploadResume(ctx context.Context, id, filename, contentType string, body io.ReadSeeker, size int64) (*models.Seeker, error) {
	if s.resumes == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	link, err := s.resumes.Put(ctx, id, filename, contentType, body, size)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, map[string]any{"resume_link": link})
}

// ResumeURL returns a link the client can open directly.
func (s *SeekerService) ResumeURL(ctx context.Context, id string) (string, error) {
	seeker, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if seeker.ResumeLink == "" {
		return "", &repository.NotFoundError{Resource: "resume", ID: id}
	}
	if s.resumes == nil {
		return seeker.ResumeLink, nil
	}
	return s.resumes.URL(ctx, seeker.ResumeLink)
}

type CompanyService struct {
	crud[models.Company, repository.CompanyFilter]
	accounts
}

func NewCompanyService(db *gorm.DB, repos *repository.Repositories, schema validation.Schema, mailer notify.Mailer, log *zap.Logger) *CompanyService {
	return &CompanyService{
		crud:     crud[models.Company, repository.CompanyFilter]{repo: repos.Companies, schema: schema},
		accounts: newAccounts(db, repos, mailer, log),
	}
}

func (s *CompanyService) Create(ctx context.Context, req *dtos.CompanyRegisterRequest) (*models.Company, error) {
	req.Email = normalizeEmail(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := validation.Validate(s.schema, req); err != nil {
		return nil, err
	}
	var company *models.Company
	user, err := s.register(ctx, req.Credentials, req.CompanyName, models.RoleCompany, func(repos *repository.Repositories, user *models.User) (err error) {
		company, err = repos.Companies.Create(ctx, &models.Company{
			UserID:      user.ID,
			Name:        req.CompanyName,
			Website:     req.Website,
			Description: req.Description,
			Location:    req.Location,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	company.User = user
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id string, req *dtos.CompanyUpdateRequest) (*models.Company, error) {
	trimPtr(req.CompanyName)
	return s.patch(ctx, id, req)
}

// Delete removes the company and its account. Jobs it posted go too, history
// included.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	return deleteWithOwner(ctx, s.db, s.repos, id,
		func(r *repository.Repositories) *repository.CompanyRepository { return r.Companies },
		func(c *models.Company) string { return c.UserID },
		deleteCompanyJobs,
	)
}

func deleteCompanyJobs(tx *gorm.DB, c *models.Company) error {
	jobs := tx.Model(&models.Job{}).Select("id").Where("company_id = ?", c.ID)
	if err := tx.Where("job_id IN (?)", jobs).Delete(&models.JobEvent{}).Error; err != nil {
		return err
	}
	return tx.Where("company_id = ?", c.ID).Delete(&models.Job{}).Error
}
