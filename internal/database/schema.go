package database

// Schema is the snapshot cache schema. Blobs are msgpack-encoded upstream payloads.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    expires_at INTEGER NOT NULL,
    fetched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_expires ON snapshots(expires_at);
`
