package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/edit"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

func TestToEventResp(t *testing.T) {
	t.Run("successfully_maps_all_fields", func(t *testing.T) {
		e := domain.Event{
			ID:          "e1",
			Description: "Concierto",
			Location:    "Foro Sol",
			EventType:   domain.EventTypeMusic,
			EventDate:   time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
			ImageURL:    domain.StringPtr("https://cdn/e1.jpg"),
		}

		resp := ToEventResp(e)

		assert.Equal(t, "e1", resp.ID)
		assert.Equal(t, "2024-03-15T18:30:00", resp.EventDate)
		assert.Equal(t, "https://cdn/e1.jpg", *resp.ImageURL)
	})

	t.Run("empty_list_is_not_null", func(t *testing.T) {
		assert.NotNil(t, ToEventsResp(nil).Events)
	})
}

func TestToSessionResp(t *testing.T) {
	assert.Equal(t, SessionResp{}, ToSessionResp(domain.Anonymous()))

	s := ToSessionResp(domain.Session{User: &domain.Identity{ID: "u1", Email: "a@b.c"}, IsAdmin: true})
	assert.True(t, s.Authenticated)
	assert.True(t, s.IsAdmin)
	require.NotNil(t, s.User)
	assert.Equal(t, "u1", s.User.ID)
}

func TestToEditResp(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		out := ToEditResp(edit.Snapshot{State: edit.StateClosed})
		assert.Equal(t, "closed", out.State)
		assert.Nil(t, out.Draft)
		assert.Nil(t, out.Crop)
	})

	t.Run("draft_and_crop", func(t *testing.T) {
		d := edit.NewDraft(domain.Event{ID: "e1", EventDate: time.Date(2024, 3, 15, 18, 30, 45, 0, time.UTC)})
		v := crop.View{Preview: "h1", ContentType: "image/png", ImageWidth: 800, ImageHeight: 600, Crop: crop.Rect{Width: 800, Height: 400}}

		out := ToEditResp(edit.Snapshot{State: edit.StateCropping, Draft: &d, Crop: &v})

		require.NotNil(t, out.Draft)
		assert.Equal(t, "2024-03-15T18:30", out.Draft.DateTime)
		require.NotNil(t, out.Crop)
		assert.Equal(t, "/previews/h1", out.Crop.PreviewURL)
		assert.Equal(t, 400, out.Crop.OutputWidth)
		assert.Equal(t, 2.0, out.Crop.AspectRatio)
	})
}

func TestCropOpReq_Op(t *testing.T) {
	op := CropOpReq{Action: "resize", Width: 300}.Op()
	assert.Equal(t, crop.OpResize, op.Kind)
	assert.Equal(t, 300.0, op.Width)
}
