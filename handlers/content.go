package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"memoryvault/models"

	"github.com/gin-gonic/gin"
)

// ListMemories returns all memories, newest memory date first
func (h *Handler) ListMemories(c *gin.Context) {
	memories, err := h.services.Memories.List(c.Request.Context())
	if err != nil {
		respondError(c, "list memories", err)
		return
	}
	c.JSON(http.StatusOK, memories)
}

// CreateMemory creates a memory
func (h *Handler) CreateMemory(c *gin.Context) {
	var req models.MemoryCreate
	if !bindJSON(c, &req) {
		return
	}
	memory, err := h.services.Memories.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "create memory", err)
		return
	}
	c.JSON(http.StatusOK, memory)
}

// UpdateMemory applies a partial update. Unknown ids answer null.
func (h *Handler) UpdateMemory(c *gin.Context) {
	var req models.MemoryUpdate
	if !bindJSON(c, &req) {
		return
	}
	memory, err := h.services.Memories.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "update memory", err)
		return
	}
	if memory == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, memory)
}

// DeleteMemory deletes the memory named by ?id=
func (h *Handler) DeleteMemory(c *gin.Context) {
	if err := h.services.Memories.Delete(c.Request.Context(), strings.TrimSpace(c.Query("id"))); err != nil {
		respondError(c, "delete memory", err)
		return
	}
	success(c)
}

// ListReasons returns active reasons
func (h *Handler) ListReasons(c *gin.Context) {
	reasons, err := h.services.Reasons.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, "list reasons", err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}

func (h *Handler) CreateReason(c *gin.Context) {
	var req models.ReasonCreate
	if !bindJSON(c, &req) {
		return
	}
	reason, err := h.services.Reasons.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "create reason", err)
		return
	}
	c.JSON(http.StatusOK, reason)
}

func (h *Handler) UpdateReason(c *gin.Context) {
	var req models.ReasonUpdate
	if !bindJSON(c, &req) {
		return
	}
	reason, err := h.services.Reasons.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "update reason", err)
		return
	}
	if reason == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, reason)
}

func (h *Handler) DeleteReason(c *gin.Context) {
	if err := h.services.Reasons.Delete(c.Request.Context(), strings.TrimSpace(c.Query("id"))); err != nil {
		respondError(c, "delete reason", err)
		return
	}
	success(c)
}

// ListEvents returns events, soonest first
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.services.Events.List(c.Request.Context())
	if err != nil {
		respondError(c, "list events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.EventCreate
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.services.Events.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "create event", err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.services.Events.Delete(c.Request.Context(), strings.TrimSpace(c.Query("id"))); err != nil {
		respondError(c, "delete event", err)
		return
	}
	success(c)
}

// GetSettings returns all settings, or the one named by ?key= (null when unset)
func (h *Handler) GetSettings(c *gin.Context) {
	if key, ok := c.GetQuery("key"); ok {
		setting, err := h.services.Settings.Get(c.Request.Context(), key)
		if err != nil {
			respondError(c, "get setting", err)
			return
		}
		if setting == nil {
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusOK, setting)
		return
	}

	settings, err := h.services.Settings.List(c.Request.Context())
	if err != nil {
		respondError(c, "list settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type settingRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// UpdateSetting upserts {key, value}
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req settingRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.services.Settings.Upsert(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		respondError(c, "update setting", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

type proposalRequest struct {
	Response string `json:"response"`
}

// RespondToProposal records a proposal answer from any signed-in visitor
func (h *Handler) RespondToProposal(c *gin.Context) {
	var req proposalRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.services.Proposals.Respond(c.Request.Context(), req.Response)
	if err != nil {
		respondError(c, "record proposal response", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListProposalResponses returns recorded answers for the owner
func (h *Handler) ListProposalResponses(c *gin.Context) {
	responses, err := h.services.Proposals.List(c.Request.Context())
	if err != nil {
		respondError(c, "list proposal responses", err)
		return
	}
	c.JSON(http.StatusOK, responses)
}
