package dto

import (
	"time"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

type CreateRoundRequest struct {
	RoundID   string                `json:"round_id"`
	CreatedAt time.Time             `json:"created_at"`
	Global    model.Metrics         `json:"global"`
	Clients   []model.ClientMetrics `json:"clients"`
}

func (r CreateRoundRequest) ToModel() model.TrainingRound {
	return model.TrainingRound{
		RoundID:   r.RoundID,
		CreatedAt: r.CreatedAt,
		Global:    r.Global,
		Clients:   r.Clients,
	}
}
