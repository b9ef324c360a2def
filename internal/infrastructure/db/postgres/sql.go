package postgres

const listEventsSQL = `
SELECT id, description, location, event_type, event_date, image_url
FROM events
ORDER BY event_date ASC, id ASC
`

// LIMIT 2 so a duplicated role row is detected instead of silently picking one.
const roleOfSQL = `
SELECT role FROM user_roles WHERE user_id = $1 LIMIT 2
`

// The EXISTS clause mirrors the hosted backend's row-level policy: only admins write events.
const updateEventSQL = `
UPDATE events SET
  description=$2, location=$3, event_type=$4, event_date=$5::timestamp, image_url=$6, updated_at=NOW()
WHERE id=$1
  AND EXISTS (SELECT 1 FROM user_roles WHERE user_id=$7 AND role='admin')
`

const eventExistsSQL = `
SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)
`

const upsertEventSQL = `
INSERT INTO events (id, description, location, event_type, event_date, image_url)
VALUES ($1,$2,$3,$4,$5::timestamp,$6)
ON CONFLICT (id) DO UPDATE SET
  description=EXCLUDED.description, location=EXCLUDED.location, event_type=EXCLUDED.event_type,
  event_date=EXCLUDED.event_date, image_url=EXCLUDED.image_url, updated_at=NOW()
`
