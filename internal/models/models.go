package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account roles stored on User.Role.
const (
	RoleSeeker  = "seeker"
	RoleCompany = "company"
	RoleAdmin   = "admin"
)

// Job statuses.
const (
	JobStatusDraft  = "DRAFT"
	JobStatusOpen   = "OPEN"
	JobStatusClosed = "CLOSED"
)

// Base replaces gorm.Model. There is no DeletedAt: rows are hard-deleted.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Base

	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Name         string `gorm:"size:100" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:16;not null;default:seeker" json:"role"`
}

type Admin struct {
	Base

	UserID string `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	Title string `gorm:"size:100" json:"title"`
}

type Seeker struct {
	Base

	UserID string `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	FullName   string `gorm:"size:150;not null" json:"full_name"`
	Headline   string `gorm:"size:255" json:"headline"`
	Location   string `gorm:"size:150" json:"location"`
	Skills     string `gorm:"type:text" json:"skills"`
	ResumeLink string `json:"resume_link"`
}

type Company struct {
	Base

	// Owning account.
	UserID string `gorm:"size:36;index;not null" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	Name        string `gorm:"uniqueIndex;size:191;not null" json:"company_name"`
	Website     string `json:"website"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"size:150" json:"location"`

	// 'omitempty' prevents infinite loops when fetching a Job -> Company -> Jobs -> ...
	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	Base

	// Foreign Key
	CompanyID string `gorm:"size:36;index;not null" json:"company_id"`
	// Association: filled by Preload
	Company *Company `json:"company,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"size:150" json:"location"`
	SalaryRange string `json:"salary_range"`
	TechStack   string `json:"tech_stack"`
	JobLink     string `json:"job_link"`
	Status      string `gorm:"size:16;default:'OPEN'" json:"status"`
}

// JobEvent records a status transition of a Job.
type JobEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	JobID     string    `gorm:"size:36;index;not null" json:"job_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

func (e *JobEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// All lists the models managed by migrations, parents first.
func All() []any {
	return []any{&User{}, &Admin{}, &Seeker{}, &Company{}, &Job{}, &JobEvent{}}
}
