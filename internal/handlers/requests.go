package handlers

import (
	"fmt"
	"strings"

	"districtlottery/internal/engine"
	"districtlottery/internal/models"
	"districtlottery/internal/services"
)

type replaceParticipantsRequest struct {
	Participants []models.Participant `json:"participants"`
	ClearWinners bool                 `json:"clearWinners"`
}

type replacePrizesRequest struct {
	Scope   string         `json:"scope" binding:"required"`
	Context string         `json:"context"`
	Prizes  []models.Prize `json:"prizes" binding:"dive"`
}

type selectRoundRequest struct {
	Scope     *string `json:"scope"`
	Filter    *string `json:"filter"`
	PrizeID   *string `json:"prizeId"`
	Mode      *string `json:"mode"`
	BatchSize *int    `json:"batchSize" binding:"omitempty,min=1"`
}

func (r selectRoundRequest) selection() (services.RoundSelection, error) {
	sel := services.RoundSelection{
		Filter:    r.Filter,
		PrizeID:   r.PrizeID,
		BatchSize: r.BatchSize,
	}
	if r.Scope != nil {
		scope, err := models.ParseScope(*r.Scope)
		if err != nil {
			return sel, fmt.Errorf("%w: %q", engine.ErrUnknownScope, *r.Scope)
		}
		sel.Scope = &scope
	}
	if r.Mode != nil {
		mode := models.DrawMode(strings.ToUpper(strings.TrimSpace(*r.Mode)))
		sel.Mode = &mode
	}
	return sel, nil
}

type startDrawRequest struct {
	Confirm bool `json:"confirm"`
}

type roundResponse struct {
	engine.Plan
	Blocked     bool   `json:"blocked"`
	BlockCode   string `json:"blockCode,omitempty"`
	BlockReason string `json:"blockReason,omitempty"`
}

func planResponse(p engine.Plan) roundResponse {
	resp := roundResponse{Plan: p}
	if p.Block != nil {
		resp.Blocked = true
		resp.BlockCode = engine.Code(p.Block)
		resp.BlockReason = p.Block.Error()
	}
	return resp
}
