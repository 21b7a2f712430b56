package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"votapp-backend/cache"
	"votapp-backend/models"
	"votapp-backend/service"
)

// VotingHandler serves the poll lifecycle endpoints.
type VotingHandler struct {
	votings *service.VotingService
	results *cache.ResultsCache
}

// NewVotingHandler creates a VotingHandler.
func NewVotingHandler(votings *service.VotingService, results *cache.ResultsCache) *VotingHandler {
	return &VotingHandler{votings: votings, results: results}
}

// Create handles POST /api/votings.
func (h *VotingHandler) Create(c *gin.Context) {
	var input models.CreateVotingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	voting, err := h.votings.Create(c.Request.Context(), input, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "voting created", voting)
}

// GetAll handles GET /api/votings.
func (h *VotingHandler) GetAll(c *gin.Context) {
	votings, err := h.votings.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "votings retrieved", votings)
}

// GetActive handles GET /api/votings/active.
func (h *VotingHandler) GetActive(c *gin.Context) {
	votings, err := h.votings.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "active votings retrieved", votings)
}

// GetMine handles GET /api/votings/mine.
func (h *VotingHandler) GetMine(c *gin.Context) {
	votings, err := h.votings.GetByCreator(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "votings retrieved", votings)
}

// GetByID handles GET /api/votings/:id.
func (h *VotingHandler) GetByID(c *gin.Context) {
	voting, err := h.votings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "voting retrieved", voting)
}

// GetByCode handles GET /api/votings/code/:code.
func (h *VotingHandler) GetByCode(c *gin.Context) {
	voting, err := h.votings.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "voting retrieved", voting)
}

// Update handles PUT /api/votings/:id.
func (h *VotingHandler) Update(c *gin.Context) {
	var input models.UpdateVotingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	id := c.Param("id")
	voting, err := h.votings.Update(c.Request.Context(), id, input, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.results.Invalidate(c.Request.Context(), id)
	respondOK(c, http.StatusOK, "voting updated", voting)
}

// Close handles PATCH /api/votings/:id/close.
func (h *VotingHandler) Close(c *gin.Context) {
	id := c.Param("id")
	voting, err := h.votings.Close(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.results.Invalidate(c.Request.Context(), id)
	respondOK(c, http.StatusOK, "voting closed", voting)
}

// Delete handles DELETE /api/votings/:id.
func (h *VotingHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.votings.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	h.results.Invalidate(c.Request.Context(), id)
	respondOK(c, http.StatusOK, "voting deleted", nil)
}
