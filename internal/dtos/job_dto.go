package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" validate:"required"`
	URL     string `json:"url" validate:"omitempty,url"`
}

// JobDraft is the structured posting the extraction model returns. It is not
// stored; clients review it and submit a JobCreationRequest.
type JobDraft struct {
	CompanyName string   `json:"company_name"`
	Title       string   `json:"role_title" validate:"required"`
	Location    string   `json:"location"`
	Description string   `json:"description" validate:"required"`
	TechStack   []string `json:"tech_stack" validate:"dive,required"`
	SalaryRange string   `json:"salary_range"`
	JobLink     string   `json:"job_link" validate:"omitempty,url"`
}

type JobCreationRequest struct {
	CompanyID   string `json:"company_id" validate:"required"`
	Title       string `json:"role_title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	JobLink     string `json:"job_link" validate:"omitempty,url"`

	// Optional Fields
	Location    string   `json:"location" validate:"max=150"`
	SalaryRange string   `json:"salary_range"`
	TechStack   []string `json:"tech_stack" validate:"dive,required"`
	Status      string   `json:"status" validate:"omitempty,oneof=DRAFT OPEN CLOSED"` // Defaults to "OPEN" if empty
}

// JobUpdateRequest carries the fields a client wants to change. Status is
// changed through JobStatusRequest so the transition is recorded.
type JobUpdateRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,max=150"`
	SalaryRange *string   `json:"salary_range,omitempty"`
	TechStack   *[]string `json:"tech_stack,omitempty" validate:"omitempty,dive,required"`
	JobLink     *string   `json:"job_link,omitempty" validate:"omitempty,url"`
}

type JobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT OPEN CLOSED"`
	Note   string `json:"note" validate:"max=500"`
}
