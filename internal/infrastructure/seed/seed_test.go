package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

const sample = `
users:
  - id: u-admin
    email: admin@example.com
    password: secret
    role: admin
  - email: ana@example.com
    password: secret2
events:
  - id: e1
    description: Concierto en el parque
    location: Parque México
    event_type: Música
    event_date: "2024-03-15T18:30:00"
  - id: e2
    description: Feria del taco
    location: Coyoacán
    event_type: Gastronomía
    event_date: "2024-04-01T12:00:00"
    image_url: https://cdn.example/e2.jpg
`

type memUsers struct {
	users map[string]domain.User
	roles map[string]string
	err   error
}

func (m *memUsers) UpsertUser(ctx context.Context, u domain.User) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			u.ID = existing.ID
		}
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) SetRole(ctx context.Context, userID, role string) error {
	if role == "" {
		delete(m.roles, userID)
		return nil
	}
	m.roles[userID] = role
	return nil
}

type memEvents map[string]domain.Event

func (m memEvents) UpsertEvent(ctx context.Context, e domain.Event) error {
	m[e.ID] = e
	return nil
}

type prefixHasher struct{}

func (prefixHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }

func TestParseAndApply(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)
	require.Len(t, f.Events, 2)
	assert.Nil(t, f.Events[0].ImageURL)

	users := &memUsers{users: map[string]domain.User{}, roles: map[string]string{}}
	events := memEvents{}

	require.NoError(t, Apply(context.Background(), f, users, events, prefixHasher{}, zerolog.Nop()))
	require.NoError(t, Apply(context.Background(), f, users, events, prefixHasher{}, zerolog.Nop()))

	assert.Len(t, users.users, 2, "second run is idempotent")
	assert.Equal(t, "h:secret", users.users["u-admin"].PasswordHash)
	assert.Equal(t, map[string]string{"u-admin": "admin"}, users.roles)

	e1 := events["e1"]
	assert.Equal(t, "Música", e1.EventType)
	assert.Equal(t, "2024-03-15T18:30:00", domain.FormatTimestamp(e1.EventDate))
	assert.Equal(t, "https://cdn.example/e2.jpg", domain.DerefString(events["e2"].ImageURL))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad_yaml":       "users: [",
		"missing_pw":     "users:\n  - email: a@b.c\n",
		"missing_id":     "events:\n  - event_date: \"2024-03-15T18:30:00\"\n",
		"bad_event_date": "events:\n  - id: e1\n    event_date: mañana\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Events, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply_StopsOnWriterError(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	users := &memUsers{users: map[string]domain.User{}, roles: map[string]string{}, err: errors.New("db down")}
	err = Apply(context.Background(), f, users, memEvents{}, prefixHasher{}, zerolog.Nop())
	assert.EqualError(t, err, "db down")
}
