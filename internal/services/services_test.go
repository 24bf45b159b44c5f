package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/notify"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/services"
	"github.com/justsurfingit/jobboard/internal/validation"
)

const strongPassword = "Strong!Pass1"

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeModel struct {
	reply string
	err   error
}

func (f *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

type fakeResumes struct{ puts int }

func (f *fakeResumes) Put(_ context.Context, seekerID, filename, _ string, body io.ReadSeeker, _ int64) (string, error) {
	f.puts++
	_, _ = io.Copy(io.Discard, body)
	return "s3://bucket/resumes/" + seekerID + "/" + filename, nil
}

func (f *fakeResumes) URL(_ context.Context, link string) (string, error) {
	return "https://signed.example/" + strings.TrimPrefix(link, "s3://"), nil
}

type env struct {
	db        *gorm.DB
	repos     *repository.Repositories
	mailer    *fakeMailer
	model     *fakeModel
	resumes   *fakeResumes
	users     *services.UserService
	admins    *services.AdminService
	seekers   *services.SeekerService
	companies *services.CompanyService
	jobs      *services.JobService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvDSN(t, "file::memory:")
}

func newEnvDSN(t *testing.T, dsn string) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)
	schema, err := validation.NewStructSchema()
	require.NoError(t, err)

	e := &env{db: db, repos: repos, mailer: &fakeMailer{}, model: &fakeModel{}, resumes: &fakeResumes{}}
	log := zap.NewNop()
	llm := services.NewLLMServiceWithModel(e.model, schema)

	e.users = services.NewUserService(repos, schema)
	e.admins = services.NewAdminService(db, repos, schema, e.mailer, log)
	e.seekers = services.NewSeekerService(db, repos, schema, e.mailer, e.resumes, log)
	e.companies = services.NewCompanyService(db, repos, schema, e.mailer, log)
	e.jobs = services.NewJobService(db, repos, schema, llm)
	return e
}

func (e *env) company(t *testing.T, name string) *models.Company {
	t.Helper()
	c, err := e.companies.Create(context.Background(), &dtos.CompanyRegisterRequest{
		Credentials: dtos.Credentials{Email: strings.ToLower(name) + "@example.com", Password: strongPassword},
		CompanyName: name,
	})
	require.NoError(t, err)
	return c
}

func TestUserCreateHashesPassword(t *testing.T) {
	e := newEnv(t)
	u, err := e.users.Create(context.Background(), &dtos.UserCreateRequest{
		Credentials: dtos.Credentials{Email: "  Ada@Example.com ", Password: strongPassword},
		Name:        "Ada",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, models.RoleSeeker, u.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strongPassword)))
}

func TestUserCreateRejectsInvalidInput(t *testing.T) {
	e := newEnv(t)
	_, err := e.users.Create(context.Background(), &dtos.UserCreateRequest{
		Credentials: dtos.Credentials{Email: "nope", Password: strongPassword},
	})
	f, ok := validation.AsFailure(err)
	require.True(t, ok)
	require.Equal(t, []string{"email"}, f.Details[0].Path)

	page, err := e.users.List(context.Background(), repository.UserFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 0, page.Total)
}

func TestEmailsAreStoredAndMatchedLowercase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, &dtos.UserCreateRequest{
		Credentials: dtos.Credentials{Email: "Ada@Example.com", Password: strongPassword},
		Name:        "  Ada  ",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", u.Name)

	page, err := e.users.List(ctx, repository.UserFilter{Email: " ADA@example.COM "})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)

	email := " Lovelace@Example.COM"
	updated, err := e.users.Update(ctx, u.ID, &dtos.UserUpdateRequest{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "lovelace@example.com", updated.Email)

	_, err = e.companies.Create(ctx, &dtos.CompanyRegisterRequest{
		Credentials: dtos.Credentials{Email: "LOVELACE@example.com", Password: strongPassword},
		CompanyName: "Analytical Engines",
	})
	require.True(t, repository.IsConstraintViolation(err))
}

func TestRegisterSeekerCreatesBothRowsAndGreets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	s, err := e.seekers.Create(ctx, &dtos.SeekerRegisterRequest{
		Credentials: dtos.Credentials{Email: "grace@example.com", Password: strongPassword},
		FullName:    "Grace Hopper",
		Skills:      []string{"COBOL", " compilers ", ""},
	})
	require.NoError(t, err)
	require.NotNil(t, s.User)
	require.Equal(t, models.RoleSeeker, s.User.Role)
	require.Equal(t, "COBOL,compilers", s.Skills)

	stored, err := e.seekers.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, "grace@example.com", stored.User.Email)

	require.Len(t, e.mailer.sent, 1)
	require.Equal(t, "grace@example.com", e.mailer.sent[0].To)
}

func TestRegisterRollsBackOnProfileFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.company(t, "Acme")

	_, err := e.companies.Create(ctx, &dtos.CompanyRegisterRequest{
		Credentials: dtos.Credentials{Email: "second@example.com", Password: strongPassword},
		CompanyName: "Acme",
	})
	require.True(t, repository.IsConstraintViolation(err))

	_, err = e.repos.Users.FindOne(ctx, repository.UserFilter{Email: "second@example.com"})
	require.True(t, repository.IsNotFound(err))
	require.Len(t, e.mailer.sent, 1)
}

func TestMailFailureDoesNotFailRegistration(t *testing.T) {
	e := newEnv(t)
	e.mailer.err = errors.New("smtp down")

	a, err := e.admins.Create(context.Background(), &dtos.AdminRegisterRequest{
		Credentials: dtos.Credentials{Email: "root@example.com", Password: strongPassword},
		Name:        "Root",
		Title:       "Ops",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, a.User.Role)
}

func TestProfileUpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.company(t, "Initech")

	name := "Initrode"
	updated, err := e.companies.Update(ctx, c.ID, &dtos.CompanyUpdateRequest{CompanyName: &name})
	require.NoError(t, err)
	require.Equal(t, "Initrode", updated.Name)

	bad := "not a url"
	_, err = e.companies.Update(ctx, c.ID, &dtos.CompanyUpdateRequest{Website: &bad})
	_, ok := validation.AsFailure(err)
	require.True(t, ok)

	require.NoError(t, e.companies.Delete(ctx, c.ID))
	_, err = e.repos.Users.FindByID(ctx, c.UserID)
	require.True(t, repository.IsNotFound(err))
	require.True(t, repository.IsNotFound(e.companies.Delete(ctx, c.ID)))
}

func TestListFieldsDropBlankEntries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.company(t, "Hooli")

	job, err := e.jobs.Create(ctx, &dtos.JobCreationRequest{
		CompanyID:   c.ID,
		Title:       "Platform Engineer",
		Description: "Keep it running",
		TechStack:   []string{" Go ", "", "SQL", "   "},
	})
	require.NoError(t, err)
	require.Equal(t, "Go,SQL", job.TechStack)

	stack := []string{"", "Rust "}
	job, err = e.jobs.Update(ctx, job.ID, &dtos.JobUpdateRequest{TechStack: &stack})
	require.NoError(t, err)
	require.Equal(t, "Rust", job.TechStack)

	s, err := e.seekers.Create(ctx, &dtos.SeekerRegisterRequest{
		Credentials: dtos.Credentials{Email: "linus@example.com", Password: strongPassword},
		FullName:    "Linus",
	})
	require.NoError(t, err)
	skills := []string{"  ", "kernels", ""}
	s, err = e.seekers.Update(ctx, s.ID, &dtos.SeekerUpdateRequest{Skills: &skills})
	require.NoError(t, err)
	require.Equal(t, "kernels", s.Skills)
}

func TestCompanyDeleteRemovesItsJobsUnderForeignKeys(t *testing.T) {
	e := newEnvDSN(t, "file::memory:?_pragma=foreign_keys(1)")
	ctx := context.Background()

	var fk int
	require.NoError(t, e.db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	require.Equal(t, 1, fk)

	c := e.company(t, "Umbrella")
	other := e.company(t, "Aperture")
	job, err := e.jobs.Create(ctx, &dtos.JobCreationRequest{CompanyID: c.ID, Title: "Researcher", Description: "Lab work"})
	require.NoError(t, err)
	_, err = e.jobs.ChangeStatus(ctx, job.ID, &dtos.JobStatusRequest{Status: models.JobStatusClosed})
	require.NoError(t, err)
	kept, err := e.jobs.Create(ctx, &dtos.JobCreationRequest{CompanyID: other.ID, Title: "Tester", Description: "Portals"})
	require.NoError(t, err)

	require.NoError(t, e.companies.Delete(ctx, c.ID))

	_, err = e.jobs.Get(ctx, job.ID)
	require.True(t, repository.IsNotFound(err))
	var events int64
	require.NoError(t, e.db.Model(&models.JobEvent{}).Where("job_id = ?", job.ID).Count(&events).Error)
	require.Zero(t, events)

	_, err = e.jobs.Get(ctx, kept.ID)
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.JobEvent{}).Where("job_id = ?", kept.ID).Count(&events).Error)
	require.EqualValues(t, 1, events)
}

func TestListValidatesFilter(t *testing.T) {
	e := newEnv(t)
	_, err := e.jobs.List(context.Background(), repository.JobFilter{Status: "ARCHIVED"})
	f, ok := validation.AsFailure(err)
	require.True(t, ok)
	require.Equal(t, []string{"status"}, f.Details[0].Path)
}

func TestJobLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.company(t, "Globex")

	_, err := e.jobs.Create(ctx, &dtos.JobCreationRequest{CompanyID: "missing", Title: "Go", Description: "d"})
	require.True(t, repository.IsNotFound(err))

	job, err := e.jobs.Create(ctx, &dtos.JobCreationRequest{
		CompanyID:   c.ID,
		Title:       "Backend Engineer",
		Description: "Build APIs",
		TechStack:   []string{"Go", "Postgres"},
	})
	require.NoError(t, err)
	require.Equal(t, models.JobStatusOpen, job.Status)
	require.Equal(t, "Go,Postgres", job.TechStack)
	require.NotNil(t, job.Company)

	stack := []string{"Go", "Kafka"}
	job, err = e.jobs.Update(ctx, job.ID, &dtos.JobUpdateRequest{TechStack: &stack})
	require.NoError(t, err)
	require.Equal(t, "Go,Kafka", job.TechStack)

	job, err = e.jobs.ChangeStatus(ctx, job.ID, &dtos.JobStatusRequest{Status: models.JobStatusClosed, Note: "filled"})
	require.NoError(t, err)
	require.Equal(t, models.JobStatusClosed, job.Status)

	_, err = e.jobs.ChangeStatus(ctx, job.ID, &dtos.JobStatusRequest{Status: models.JobStatusClosed})
	require.NoError(t, err)

	events, err := e.jobs.Events(ctx, job.ID, repository.JobEventFilter{
		Query: repository.Query{Sort: repository.SortBy("createdAt", repository.Asc)},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, events.Total)
	require.Equal(t, services.EventCreated, events.Items[0].EventType)
	require.Equal(t, services.EventStatusChanged, events.Items[1].EventType)
	require.Equal(t, "OPEN -> CLOSED: filled", events.Items[1].Details)

	require.NoError(t, e.jobs.Delete(ctx, job.ID))
	_, err = e.jobs.Events(ctx, job.ID, repository.JobEventFilter{})
	require.True(t, repository.IsNotFound(err))
	left, err := e.repos.JobEvents.FindMany(ctx, repository.JobEventFilter{JobID: job.ID})
	require.NoError(t, err)
	require.EqualValues(t, 0, left.Total)
}

func TestExtract(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.model.reply = "```json\n{\"company_name\":\"Acme\",\"role_title\":\"SRE\",\"description\":\"Keep it up\",\"tech_stack\":[\"Go\"],\"salary_range\":null}\n```"
	draft, err := e.jobs.Extract(ctx, &dtos.JobExtractionRequest{RawHTML: "<html>", URL: "https://jobs.example/1"})
	require.NoError(t, err)
	require.Equal(t, "SRE", draft.Title)
	require.Equal(t, "https://jobs.example/1", draft.JobLink)

	e.model.reply = `{"company_name":"Acme"}`
	_, err = e.jobs.Extract(ctx, &dtos.JobExtractionRequest{RawHTML: "<html>"})
	require.ErrorIs(t, err, services.ErrMalformedDraft)
	_, ok := validation.AsFailure(err)
	require.True(t, ok)

	e.model.reply = "I could not find a job here."
	_, err = e.jobs.Extract(ctx, &dtos.JobExtractionRequest{RawHTML: "<html>"})
	require.ErrorIs(t, err, services.ErrMalformedDraft)

	_, err = e.jobs.Extract(ctx, &dtos.JobExtractionRequest{})
	_, ok = validation.AsFailure(err)
	require.True(t, ok)
}

func TestExtractDisabled(t *testing.T) {
	llm := services.NewLLMServiceWithModel(nil, nil)
	_, err := llm.ExtractJobDetails(context.Background(), "<html>")
	require.ErrorIs(t, err, services.ErrExtractionDisabled)
}

func TestResumeUpload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.seekers.Create(ctx, &dtos.SeekerRegisterRequest{
		Credentials: dtos.Credentials{Email: "ada@example.com", Password: strongPassword},
		FullName:    "Ada",
	})
	require.NoError(t, err)

	_, err = e.seekers.ResumeURL(ctx, s.ID)
	require.True(t, repository.IsNotFound(err))

	updated, err := e.seekers.UploadResume(ctx, s.ID, "cv.pdf", "application/pdf", strings.NewReader("pdf"), 3)
	require.NoError(t, err)
	require.Equal(t, "s3://bucket/resumes/"+s.ID+"/cv.pdf", updated.ResumeLink)

	url, err := e.seekers.ResumeURL(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, "https://signed.example/bucket/resumes/"+s.ID+"/cv.pdf", url)

	_, err = e.seekers.UploadResume(ctx, "missing", "cv.pdf", "", strings.NewReader("x"), 1)
	require.True(t, repository.IsNotFound(err))
	require.Equal(t, 1, e.resumes.puts)

	noStore := services.NewSeekerService(e.db, e.repos, nil, e.mailer, nil, zap.NewNop())
	_, err = noStore.UploadResume(ctx, s.ID, "cv.pdf", "", strings.NewReader("x"), 1)
	require.ErrorIs(t, err, services.ErrStorageDisabled)
}
