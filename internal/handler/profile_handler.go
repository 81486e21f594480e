package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/response"
)

// ProfileHandler handles the user profile and spreadsheet sync settings.
type ProfileHandler struct {
	profileService *application.ProfileService
	syncService    *application.SyncService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *application.ProfileService, syncService *application.SyncService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		syncService:    syncService,
	}
}

// RegisterRoutes registers profile and sync routes.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.SaveProfile)

	sync := r.Group("/sync")
	{
		sync.GET("", h.GetSyncSettings)
		sync.PUT("", h.UpdateSyncSettings)
		sync.POST("/now", h.SyncNow)
	}
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	dto, err := h.profileService.GetProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// SaveProfile handles PUT /api/v1/profile
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	var req application.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.profileService.SaveProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetSyncSettings handles GET /api/v1/sync
func (h *ProfileHandler) GetSyncSettings(c *gin.Context) {
	response.Success(c, h.profileService.GetSyncSettings(c.Request.Context()))
}

// UpdateSyncSettings handles PUT /api/v1/sync
func (h *ProfileHandler) UpdateSyncSettings(c *gin.Context) {
	var req application.SyncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.profileService.UpdateSyncEndpoint(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// SyncNow handles POST /api/v1/sync/now
func (h *ProfileHandler) SyncNow(c *gin.Context) {
	if err := h.syncService.SyncNow(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"synced": true})
}
