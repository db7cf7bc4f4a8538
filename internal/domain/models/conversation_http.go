package models

// Requests for conversation HTTP endpoints. Defined in domain for consistency and reuse.

type TurnRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type ForecastListRequest struct {
	Durable bool `query:"durable" json:"durable" default:"true"`
}
