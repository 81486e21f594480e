package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/response"
)

// AssistantHandler handles natural-language booking requests.
type AssistantHandler struct {
	service *application.AssistantService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(service *application.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// RegisterRoutes registers the assistant route.
func (h *AssistantHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/assistant", h.Ask)
}

// Ask handles POST /api/v1/assistant
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req application.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reply, err := h.service.Ask(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, reply)
}
