package models

// LoginInput is the request body for POST /api/auth/login.
type LoginInput struct {
	Name     string `json:"name" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

// CreateVotingInput is the request body for POST /api/votings. Options are
// plain texts; ids and zeroed counters are assigned by the repository.
type CreateVotingInput struct {
	Title       string   `json:"title" binding:"required,min=5,max=200"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	Options     []string `json:"options" binding:"required,min=2,max=10,dive,required"`
}

// UpdateVotingInput is the request body for PUT /api/votings/:id. Pointer
// fields distinguish "not provided" from zero values.
type UpdateVotingInput struct {
	Title       *string `json:"title" binding:"omitempty,min=5,max=200"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// CastVoteInput is the request body for POST /api/votes.
type CastVoteInput struct {
	VotingID string `json:"voting_id" binding:"required"`
	OptionID string `json:"option_id" binding:"required"`
}

// OptionResult is one option with its share of the total, as returned by the
// results endpoints and broadcast to WebSocket subscribers.
type OptionResult struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// VotingResults is a voting together with its computed option percentages.
type VotingResults struct {
	Voting     *Voting        `json:"voting"`
	Results    []OptionResult `json:"results"`
	TotalVotes int64          `json:"total_votes"`
}

// CalculateResults converts a voting's raw counters into percentage results.
func CalculateResults(v *Voting) *VotingResults {
	var total int64
	for _, opt := range v.Options {
		total += opt.Votes
	}

	results := make([]OptionResult, len(v.Options))
	for i, opt := range v.Options {
		results[i] = OptionResult{
			ID:    opt.ID,
			Text:  opt.Text,
			Votes: opt.Votes,
		}
		if total > 0 {
			results[i].Percentage = float64(opt.Votes) / float64(total) * 100
		}
	}

	return &VotingResults{Voting: v, Results: results, TotalVotes: total}
}
