package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
)

// AnnouncementController handles announcements
type AnnouncementController struct {
	announcementService services.AnnouncementService
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcementService services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{announcementService: announcementService}
}

// CreateAnnouncement posts an announcement
// @Summary Create announcement
// @Description Creates an announcement authored by the calling operator. Omit department_id for a global notice.
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=models.Announcement} "Announcement created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /announcements [post]
func (c *AnnouncementController) CreateAnnouncement(ctx *gin.Context) {
	var req dto.AnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	announcement := req.ToModel()
	if err := c.announcementService.CreateAnnouncement(ctx, announcement, middleware.ActorID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, announcement)
}

// GetAnnouncement retrieves an announcement
// @Summary Get announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=models.Announcement} "Announcement"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [get]
func (c *AnnouncementController) GetAnnouncement(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Announcement")
	if !valid {
		return
	}

	announcement, err := c.announcementService.GetAnnouncement(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, announcement)
}

// ListAnnouncements lists announcements by priority then recency
// @Summary List announcements
// @Description With live=true only active, unexpired announcements are returned, up to limit.
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param live query bool false "Only live announcements"
// @Param limit query int false "Maximum live announcements, 0 for all"
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement} "Announcements"
// @Router /announcements [get]
func (c *AnnouncementController) ListAnnouncements(ctx *gin.Context) {
	if ctx.Query("live") == "true" {
		limit, _ := strconv.Atoi(ctx.Query("limit"))
		announcements, err := c.announcementService.Active(ctx, limit)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		respond(ctx, http.StatusOK, announcements)
		return
	}

	announcements, err := c.announcementService.ListAnnouncements(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, announcements)
}

// UpdateAnnouncement edits an announcement
// @Summary Update announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 200 {object} dto.APIResponse{data=models.Announcement} "Announcement updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [put]
func (c *AnnouncementController) UpdateAnnouncement(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Announcement")
	if !valid {
		return
	}

	var req dto.AnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	announcement := req.ToModel()
	announcement.ID = id
	if err := c.announcementService.UpdateAnnouncement(ctx, announcement); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, announcement)
}

// DeleteAnnouncement deletes an announcement
// @Summary Delete announcement
// @Tags announcements
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 204 "Announcement deleted"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [delete]
func (c *AnnouncementController) DeleteAnnouncement(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Announcement")
	if !valid {
		return
	}

	if err := c.announcementService.DeleteAnnouncement(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
