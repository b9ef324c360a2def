package dto

type LoginReq struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type OpenEditReq struct {
	EventID string `json:"event_id" validate:"required,max=128"`
}

// UpdateDraftReq is a partial form update; absent fields are left alone.
type UpdateDraftReq struct {
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=500"`
	EventType   *string `json:"event_type,omitempty" validate:"omitempty,max=100"`
	// DateTime is the datetime-local value, e.g. 2024-03-15T18:30.
	DateTime *string `json:"datetime,omitempty" validate:"omitempty,max=32"`
}

type CropOpReq struct {
	Action string  `json:"action" validate:"required,oneof=move pan resize set"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gte=0"`
}
