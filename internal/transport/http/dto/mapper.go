package dto

import (
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/edit"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// PreviewPath is where crop previews are served; the handle is appended.
const PreviewPath = "/previews/"

func ToSessionResp(s domain.Session) SessionResp {
	out := SessionResp{Authenticated: s.Authenticated(), IsAdmin: s.IsAdmin}
	if s.User != nil {
		out.User = &UserResp{ID: s.User.ID, Email: s.User.Email}
	}
	return out
}

func ToEventResp(e domain.Event) EventResp {
	return EventResp{
		ID:          e.ID,
		Description: e.Description,
		Location:    e.Location,
		EventType:   e.EventType,
		EventDate:   domain.FormatTimestamp(e.EventDate),
		ImageURL:    e.ImageURL,
	}
}

func ToEventsResp(events []domain.Event) EventsResp {
	out := make([]EventResp, 0, len(events))
	for _, e := range events {
		out = append(out, ToEventResp(e))
	}
	return EventsResp{Events: out}
}

func ToCropResp(v crop.View) CropResp {
	return CropResp{
		PreviewURL:   PreviewPath + v.Preview,
		ContentType:  v.ContentType,
		ImageWidth:   v.ImageWidth,
		ImageHeight:  v.ImageHeight,
		Crop:         RectResp{X: v.Crop.X, Y: v.Crop.Y, Width: v.Crop.Width, Height: v.Crop.Height},
		AspectRatio:  crop.AspectRatio,
		OutputWidth:  crop.OutputWidth,
		OutputHeight: crop.OutputHeight,
	}
}

func ToEditResp(s edit.Snapshot) EditResp {
	out := EditResp{State: string(s.State)}
	if s.Draft != nil {
		out.Draft = &DraftResp{
			EventID:      s.Draft.EventID,
			Description:  s.Draft.Description,
			Location:     s.Draft.Location,
			EventType:    s.Draft.EventType,
			DateTime:     s.Draft.DateTimeLocal(),
			ImagePreview: s.Draft.ImagePreview,
			PendingImage: s.Draft.HasPendingImage(),
		}
	}
	if s.Crop != nil {
		c := ToCropResp(*s.Crop)
		out.Crop = &c
	}
	return out
}

func (r UpdateDraftReq) Fields() edit.Fields {
	return edit.Fields{
		Description: r.Description,
		Location:    r.Location,
		EventType:   r.EventType,
		DateTime:    r.DateTime,
	}
}

func (r CropOpReq) Op() crop.Op {
	return crop.Op{
		Kind:  crop.OpKind(r.Action),
		DX:    r.DX,
		DY:    r.DY,
		X:     r.X,
		Y:     r.Y,
		Width: r.Width,
	}
}
