// Package seed loads local-backend fixtures (users, roles, events) from YAML.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type UserFixture struct {
	ID       string `yaml:"id"`       // optional; generated when empty
	Email    string `yaml:"email"`
	Password string `yaml:"password"` // plain text, hashed on load
	Role     string `yaml:"role"`     // "" = no role row
}

type EventFixture struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	Location    string  `yaml:"location"`
	EventType   string  `yaml:"event_type"`
	EventDate   string  `yaml:"event_date"` // 2006-01-02T15:04:05
	ImageURL    *string `yaml:"image_url"`
}

type Fixtures struct {
	Users  []UserFixture  `yaml:"users"`
	Events []EventFixture `yaml:"events"`
}

type UserWriter interface {
	UpsertUser(ctx context.Context, u domain.User) (string, error)
	SetRole(ctx context.Context, userID, role string) error
}

type EventWriter interface {
	UpsertEvent(ctx context.Context, e domain.Event) error
}

type Hasher interface {
	Hash(password string) (string, error)
}

func Load(path string) (Fixtures, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return Fixtures{}, fmt.Errorf("users[%d]: email and password are required", i)
		}
	}
	for i, e := range f.Events {
		if strings.TrimSpace(e.ID) == "" {
			return Fixtures{}, fmt.Errorf("events[%d]: id is required", i)
		}
		if _, err := domain.ParseTimestamp(e.EventDate); err != nil {
			return Fixtures{}, fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	return f, nil
}

// Apply upserts every fixture. Running it twice leaves the same state.
func Apply(ctx context.Context, f Fixtures, users UserWriter, events EventWriter, h Hasher, log zerolog.Logger) error {
	for _, u := range f.Users {
		hash, err := h.Hash(u.Password)
		if err != nil {
			return err
		}
		id := u.ID
		if id == "" {
			id = uuid.NewString()
		}
		stored, err := users.UpsertUser(ctx, domain.User{ID: id, Email: u.Email, PasswordHash: hash})
		if err != nil {
			return err
		}
		if err := users.SetRole(ctx, stored, u.Role); err != nil {
			return err
		}
		log.Info().Str("email", u.Email).Str("role", u.Role).Msg("seeded user")
	}

	for _, e := range f.Events {
		when, _ := domain.ParseTimestamp(e.EventDate)
		err := events.UpsertEvent(ctx, domain.Event{
			ID:          e.ID,
			Description: e.Description,
			Location:    e.Location,
			EventType:   e.EventType,
			EventDate:   when,
			ImageURL:    e.ImageURL,
		})
		if err != nil {
			return err
		}
	}
	log.Info().Int("events", len(f.Events)).Msg("seeded events")
	return nil
}
