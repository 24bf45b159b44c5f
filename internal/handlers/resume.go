package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobboard/internal/services"
)

const maxResumeSize = 5 << 20

// ResumeHandler uploads seeker resumes and hands out links to them.
type ResumeHandler struct {
	seekers *services.SeekerService
	log     *zap.Logger
}

func NewResumeHandler(seekers *services.SeekerService, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{seekers: seekers, log: log}
}

// Register mounts the routes on the seekers group.
func (h *ResumeHandler) Register(rg *gin.RouterGroup) {
	rg.PUT("/:id/resume", h.Upload)
	rg.GET("/:id/resume", h.Link)
}

// Upload takes a multipart form with the file in the "file" field.
func (h *ResumeHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}
	if header.Size > maxResumeSize {
		respondError(c, h.log, badRequest(fmt.Errorf("resume is larger than %d bytes", maxResumeSize)))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	seeker, err := h.seekers.UploadResume(c.Request.Context(), c.Param("id"), header.Filename, contentType, file, header.Size)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, seeker)
}

// Link returns a URL for the stored resume, or redirects to it when
// ?redirect=true.
func (h *ResumeHandler) Link(c *gin.Context) {
	url, err := h.seekers.ResumeURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, url)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
