package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/services"
)

// Resource is the service surface behind the five standard routes. C and U
// are the create and update request bodies.
type Resource[T any, F repository.Filter, C any, U any] interface {
	Create(ctx context.Context, req *C) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f F) (*repository.Page[T], error)
	Update(ctx context.Context, id string, req *U) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler serves list, get, create, patch and delete for one entity.
type ResourceHandler[T any, F repository.Filter, C any, U any] struct {
	svc Resource[T, F, C, U]
	log *zap.Logger
}

type (
	UserHandler    = ResourceHandler[models.User, repository.UserFilter, dtos.UserCreateRequest, dtos.UserUpdateRequest]
	AdminHandler   = ResourceHandler[models.Admin, repository.AdminFilter, dtos.AdminRegisterRequest, dtos.AdminUpdateRequest]
	SeekerHandler  = ResourceHandler[models.Seeker, repository.SeekerFilter, dtos.SeekerRegisterRequest, dtos.SeekerUpdateRequest]
	CompanyHandler = ResourceHandler[models.Company, repository.CompanyFilter, dtos.CompanyRegisterRequest, dtos.CompanyUpdateRequest]
)

func NewUserHandler(svc *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

func NewAdminHandler(svc *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func NewSeekerHandler(svc *services.SeekerService, log *zap.Logger) *SeekerHandler {
	return &SeekerHandler{svc: svc, log: log}
}

func NewCompanyHandler(svc *services.CompanyService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{svc: svc, log: log}
}

// Register mounts the routes on rg, which is already scoped to the entity.
func (h *ResourceHandler[T, F, C, U]) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T, F, C, U]) List(c *gin.Context) {
	var f F
	if err := c.ShouldBindQuery(&f); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	page, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ResourceHandler[T, F, C, U]) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ResourceHandler[T, F, C, U]) Create(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *ResourceHandler[T, F, C, U]) Update(c *gin.Context) {
	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ResourceHandler[T, F, C, U]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
