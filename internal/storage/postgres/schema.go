package postgres

// schema is applied on startup; every statement is idempotent.
const schema = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS agencies (
	id         uuid PRIMARY KEY,
	name       text NOT NULL,
	geo_point  geography(Point, 4326) NOT NULL,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS agencies_geo_point_idx ON agencies USING GIST (geo_point);

CREATE TABLE IF NOT EXISTS alerts (
	id         uuid PRIMARY KEY,
	title      text NOT NULL,
	message    text NOT NULL,
	severity   text NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
	geo_point  geography(Point, 4326) NOT NULL,
	radius_km  double precision NOT NULL CHECK (radius_km > 0),
	created_by uuid NOT NULL REFERENCES agencies (id),
	status     text NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
	recipients uuid[] NOT NULL DEFAULT '{}',
	read_by    uuid[] NOT NULL DEFAULT '{}',
	expires_at timestamptz NOT NULL,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS alerts_geo_point_idx ON alerts USING GIST (geo_point);
CREATE INDEX IF NOT EXISTS alerts_expires_at_idx ON alerts (expires_at);
CREATE INDEX IF NOT EXISTS alerts_created_by_idx ON alerts (created_by, created_at DESC);
CREATE INDEX IF NOT EXISTS alerts_recipients_idx ON alerts USING GIN (recipients);

CREATE TABLE IF NOT EXISTS agency_alerts (
	agency_id uuid NOT NULL REFERENCES agencies (id) ON DELETE CASCADE,
	alert_id  uuid NOT NULL REFERENCES alerts (id) ON DELETE CASCADE,
	added_at  timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (agency_id, alert_id)
);
CREATE INDEX IF NOT EXISTS agency_alerts_alert_idx ON agency_alerts (alert_id);
`
