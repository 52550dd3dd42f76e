package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
	"github.com/sengtan/utm-campus-chatbot/internal/service"
	"github.com/sengtan/utm-campus-chatbot/internal/utils"
)

// FacilityHandler exposes the facility context snapshot
type FacilityHandler struct {
	assistant *service.Assistant
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(assistant *service.Assistant) *FacilityHandler {
	return &FacilityHandler{assistant: assistant}
}

// List handles GET /api/v1/facilities?q=
func (h *FacilityHandler) List(c *gin.Context) {
	facilities := utils.FilterFacilities(c.Query("q"), h.assistant.Facilities())

	c.JSON(http.StatusOK, model.FacilityListResponse{
		Facilities: facilities,
		Total:      len(facilities),
		LoadedAt:   timePtr(h.assistant.ContextLoadedAt()),
	})
}

// Refresh handles POST /api/v1/admin/refresh-context
func (h *FacilityHandler) Refresh(c *gin.Context) {
	h.assistant.RefreshContext(c.Request.Context())

	c.JSON(http.StatusOK, model.RefreshResponse{
		Facilities: len(h.assistant.Facilities()),
		LoadedAt:   timePtr(h.assistant.ContextLoadedAt()),
	})
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
