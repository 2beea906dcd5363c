package store

const coreSchema = `
CREATE TABLE IF NOT EXISTS files (
    file_index  INTEGER PRIMARY KEY,
    path        VARCHAR NOT NULL,
    start_time  TIMESTAMP,
    line_count  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    session_id   VARCHAR PRIMARY KEY,
    start_time   TIMESTAMP NOT NULL,
    call_time    TIMESTAMP NOT NULL,
    call_number  VARCHAR NOT NULL DEFAULT '',
    conclusion   VARCHAR NOT NULL DEFAULT '',
    note         VARCHAR NOT NULL DEFAULT '',
    line_count   INTEGER NOT NULL,
    event_count  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_start  ON sessions(start_time);
CREATE INDEX IF NOT EXISTS idx_sessions_number ON sessions(call_number);

CREATE TABLE IF NOT EXISTS events (
    session_id  VARCHAR NOT NULL,
    seq         INTEGER NOT NULL,
    file_index  INTEGER NOT NULL,
    line_no     INTEGER NOT NULL,
    tag         VARCHAR NOT NULL,
    fields      JSON,
    PRIMARY KEY (session_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_tag ON events(tag);

CREATE TABLE IF NOT EXISTS ignored_lines (
    file_index  INTEGER NOT NULL,
    line_no     INTEGER NOT NULL,
    text        VARCHAR NOT NULL,
    PRIMARY KEY (file_index, line_no)
);
`

var resetStatements = []string{
	"DELETE FROM events",
	"DELETE FROM ignored_lines",
	"DELETE FROM sessions",
	"DELETE FROM files",
}
