package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"votapp-backend/cache"
	"votapp-backend/models"
	"votapp-backend/service"
)

// VoteHandler serves vote casting and result endpoints.
type VoteHandler struct {
	votes   *service.VoteService
	results *cache.ResultsCache
	hub     *Hub
}

// NewVoteHandler creates a VoteHandler. hub may be nil in tests.
func NewVoteHandler(votes *service.VoteService, results *cache.ResultsCache, hub *Hub) *VoteHandler {
	return &VoteHandler{votes: votes, results: results, hub: hub}
}

// Cast handles POST /api/votes.
func (h *VoteHandler) Cast(c *gin.Context) {
	var input models.CastVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	vote, err := h.votes.CastVote(ctx, input.VotingID, input.OptionID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.results.Invalidate(ctx, input.VotingID)

	if h.hub != nil {
		if results, err := h.votes.GetResults(ctx, input.VotingID); err == nil {
			h.hub.Broadcast(input.VotingID, results)
		}
	}

	respondOK(c, http.StatusCreated, "vote recorded", vote)
}

// ResultsByID handles GET /api/votes/voting/:id/results.
func (h *VoteHandler) ResultsByID(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	results, err := h.results.Get(ctx, id, func() (*models.VotingResults, error) {
		return h.votes.GetResults(ctx, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "results retrieved", results)
}

// ResultsByCode handles GET /api/votes/voting/code/:code/results. Lookups
// by code skip the cache: they first resolve to the voting anyway.
func (h *VoteHandler) ResultsByCode(c *gin.Context) {
	results, err := h.votes.GetResultsByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "results retrieved", results)
}

// HasVoted handles GET /api/votes/user/:votingId/has-voted.
func (h *VoteHandler) HasVoted(c *gin.Context) {
	hasVoted, err := h.votes.HasUserVoted(c.Request.Context(), currentUserID(c), c.Param("votingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "vote status checked", gin.H{"has_voted": hasVoted})
}

// MyVotes handles GET /api/votes/user/my-votes.
func (h *VoteHandler) MyVotes(c *gin.Context) {
	votes, err := h.votes.GetUserVotes(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "user votes retrieved", votes)
}

// Audit handles GET /api/votes/voting/:id/audit, the creator's listing of
// every vote in a voting.
func (h *VoteHandler) Audit(c *gin.Context) {
	votes, err := h.votes.GetVotingVotes(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "votes retrieved", votes)
}
