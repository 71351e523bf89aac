package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS resources (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	owner_id     TEXT NOT NULL,
	hourly_rate  REAL NOT NULL DEFAULT 0 CHECK(hourly_rate >= 0),
	opening_time TEXT NOT NULL DEFAULT '',
	closing_time TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_resources_owner_id ON resources(owner_id);

CREATE TABLE IF NOT EXISTS reservations (
	id           TEXT PRIMARY KEY,
	resource_id  TEXT NOT NULL,
	requester_id TEXT NOT NULL,
	start_at     INTEGER NOT NULL,
	end_at       INTEGER NOT NULL,
	cost         REAL NOT NULL DEFAULT 0 CHECK(cost >= 0),
	status       TEXT NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'confirmed', 'canceled', 'completed')),
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CHECK(start_at < end_at)
);

CREATE INDEX IF NOT EXISTS idx_reservations_resource_status_start
	ON reservations(resource_id, status, start_at);
CREATE INDEX IF NOT EXISTS idx_reservations_requester_id ON reservations(requester_id);
CREATE INDEX IF NOT EXISTS idx_reservations_status_end ON reservations(status, end_at);

CREATE TABLE IF NOT EXISTS notifications (
	id             TEXT PRIMARY KEY,
	recipient_id   TEXT NOT NULL,
	sender_id      TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT 'general'
		CHECK(type IN ('general', 'booking_created', 'booking_confirmed',
		               'booking_canceled', 'booking_completed')),
	title          TEXT NOT NULL DEFAULT '',
	message        TEXT NOT NULL,
	resource_id    TEXT NOT NULL DEFAULT '',
	reservation_id TEXT NOT NULL DEFAULT '',
	is_read        INTEGER NOT NULL DEFAULT 0 CHECK(is_read IN (0, 1)),
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created
	ON notifications(recipient_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_reservation_id
	ON notifications(reservation_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
