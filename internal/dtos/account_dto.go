package dtos

// Credentials are shared by every registration request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,password"`
}

type UserCreateRequest struct {
	Credentials
	Name string `json:"name" validate:"max=100"`
	Role string `json:"role" validate:"omitempty,oneof=seeker company admin"`
}

type UserUpdateRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=191"`
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
}

type AdminRegisterRequest struct {
	Credentials
	Name  string `json:"name" validate:"required,max=100"`
	Title string `json:"title" validate:"max=100"`
}

type AdminUpdateRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,max=100"`
}

type SeekerRegisterRequest struct {
	Credentials
	FullName   string   `json:"full_name" validate:"required,max=150"`
	Headline   string   `json:"headline" validate:"max=255"`
	Location   string   `json:"location" validate:"max=150"`
	Skills     []string `json:"skills" validate:"dive,required"`
	ResumeLink string   `json:"resume_link" validate:"omitempty,url"`
}

type SeekerUpdateRequest struct {
	FullName   *string   `json:"full_name,omitempty" validate:"omitempty,min=1,max=150"`
	Headline   *string   `json:"headline,omitempty" validate:"omitempty,max=255"`
	Location   *string   `json:"location,omitempty" validate:"omitempty,max=150"`
	Skills     *[]string `json:"skills,omitempty" validate:"omitempty,dive,required"`
	ResumeLink *string   `json:"resume_link,omitempty" validate:"omitempty,url"`
}

type CompanyRegisterRequest struct {
	Credentials
	CompanyName string `json:"company_name" validate:"required,max=191"`
	Website     string `json:"website" validate:"omitempty,url"`
	Description string `json:"description"`
	Location    string `json:"location" validate:"max=150"`
}

type CompanyUpdateRequest struct {
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,min=1,max=191"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=150"`
}
