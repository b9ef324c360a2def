package dto

type UserResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SessionResp struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserResp `json:"user"`
	IsAdmin       bool      `json:"is_admin"`
}

type EventResp struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	EventType   string  `json:"event_type"`
	EventDate   string  `json:"event_date"`
	ImageURL    *string `json:"image_url"`
}

type EventsResp struct {
	Events []EventResp `json:"events"`
}

type DraftResp struct {
	EventID      string `json:"event_id"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	EventType    string `json:"event_type"`
	DateTime     string `json:"datetime"`
	ImagePreview string `json:"image_preview,omitempty"`
	PendingImage bool   `json:"pending_image"`
}

type RectResp struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type CropResp struct {
	PreviewURL   string   `json:"preview_url"`
	ContentType  string   `json:"content_type"`
	ImageWidth   int      `json:"image_width"`
	ImageHeight  int      `json:"image_height"`
	Crop         RectResp `json:"crop"`
	AspectRatio  float64  `json:"aspect_ratio"`
	OutputWidth  int      `json:"output_width"`
	OutputHeight int      `json:"output_height"`
}

type EditResp struct {
	State string     `json:"state"`
	Draft *DraftResp `json:"draft,omitempty"`
	Crop  *CropResp  `json:"crop,omitempty"`
}
