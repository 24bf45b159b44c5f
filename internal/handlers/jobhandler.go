package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/services"
)

// JobHandler serves the job routes: the standard resource routes plus
// extraction, status changes and the event history.
type JobHandler struct {
	*ResourceHandler[models.Job, repository.JobFilter, dtos.JobCreationRequest, dtos.JobUpdateRequest]
	jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService, log *zap.Logger) *JobHandler {
	return &JobHandler{
		ResourceHandler: &ResourceHandler[models.Job, repository.JobFilter, dtos.JobCreationRequest, dtos.JobUpdateRequest]{svc: jobs, log: log},
		jobs:            jobs,
	}
}

func (h *JobHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/extract", h.Extract)
	h.ResourceHandler.Register(rg)
	rg.POST("/:id/status", h.ChangeStatus)
	rg.GET("/:id/events", h.Events)
}

// Extract is the POST /jobs/extract endpoint. It returns a draft for the
// client to review; nothing is stored.
func (h *JobHandler) Extract(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	draft, err := h.jobs.Extract(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    draft,
	})
}

func (h *JobHandler) ChangeStatus(c *gin.Context) {
	var req dtos.JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	job, err := h.jobs.ChangeStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Events(c *gin.Context) {
	var f repository.JobEventFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	page, err := h.jobs.Events(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
