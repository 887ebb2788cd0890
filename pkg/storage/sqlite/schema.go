// Package sqlite holds the embedded SQLite schema and migration set for
// the austcyberevents store.
package sqlite

// schema mirrors the tables and indexes that the initial migration's
// SQL file creates; that file, not this constant, is what Open applies.
// This constant documents the shape of a freshly-created database and
// is not read by any code or test.
const schema = `
CREATE TABLE IF NOT EXISTS raw_events (
	raw_id                  TEXT PRIMARY KEY,
	source_type             TEXT NOT NULL CHECK (source_type IN ('NewsEvents','LLMSearch','WebSearch','RegulatorScrape','CuratedList','ResearchQuery')),
	source_event_id         TEXT NOT NULL DEFAULT '',
	title                   TEXT NOT NULL,
	description             TEXT NOT NULL DEFAULT '',
	content                 TEXT NOT NULL DEFAULT '',
	event_date              TEXT,
	source_url              TEXT NOT NULL DEFAULT '',
	source_metadata         TEXT NOT NULL DEFAULT '{}',
	discovered_at           TEXT NOT NULL,
	is_processed            INTEGER NOT NULL DEFAULT 0,
	processing_attempted_at TEXT,
	processing_error        TEXT NOT NULL DEFAULT '',
	UNIQUE (source_type, source_url, title)
);

CREATE INDEX IF NOT EXISTS idx_raw_events_source_type   ON raw_events(source_type);
CREATE INDEX IF NOT EXISTS idx_raw_events_is_processed   ON raw_events(is_processed);
CREATE INDEX IF NOT EXISTS idx_raw_events_discovered_at  ON raw_events(discovered_at);

CREATE TABLE IF NOT EXISTS enriched_events (
	enriched_id                  TEXT PRIMARY KEY,
	raw_id                       TEXT NOT NULL REFERENCES raw_events(raw_id) ON DELETE CASCADE,
	title                        TEXT NOT NULL,
	description                  TEXT NOT NULL DEFAULT '',
	summary                      TEXT NOT NULL DEFAULT '',
	event_type                   TEXT NOT NULL DEFAULT '',
	severity                     TEXT NOT NULL CHECK (severity IN ('Critical','High','Medium','Low','Unknown')),
	event_date                   TEXT,
	records_affected             INTEGER,
	is_australian_event          INTEGER NOT NULL DEFAULT 0,
	is_specific_event            INTEGER NOT NULL DEFAULT 0,
	confidence_score             REAL NOT NULL DEFAULT 0,
	australian_relevance_score   REAL NOT NULL DEFAULT 0,
	perplexity_validated         INTEGER NOT NULL DEFAULT 0,
	perplexity_enrichment_data   TEXT NOT NULL DEFAULT '{}',
	attacking_entity_name        TEXT NOT NULL DEFAULT '',
	attack_method                TEXT NOT NULL DEFAULT '',
	victim_organization_name     TEXT NOT NULL DEFAULT '',
	victim_organization_industry TEXT NOT NULL DEFAULT '',
	status                       TEXT NOT NULL CHECK (status IN ('Active','Superseded','Rejected')),
	created_at                   TEXT NOT NULL,
	updated_at                   TEXT NOT NULL,
	CHECK (is_australian_event = 1 AND is_specific_event = 1)
);

CREATE INDEX IF NOT EXISTS idx_enriched_events_raw_id      ON enriched_events(raw_id);
CREATE INDEX IF NOT EXISTS idx_enriched_events_is_aus      ON enriched_events(is_australian_event);
CREATE INDEX IF NOT EXISTS idx_enriched_events_is_specific ON enriched_events(is_specific_event);
CREATE INDEX IF NOT EXISTS idx_enriched_events_event_date  ON enriched_events(event_date);

CREATE TABLE IF NOT EXISTS deduplicated_events (
	dedup_id                     TEXT PRIMARY KEY,
	master_enriched_id           TEXT NOT NULL REFERENCES enriched_events(enriched_id),
	title                        TEXT NOT NULL,
	description                  TEXT NOT NULL DEFAULT '',
	summary                      TEXT NOT NULL DEFAULT '',
	event_type                   TEXT NOT NULL DEFAULT '',
	severity                     TEXT NOT NULL CHECK (severity IN ('Critical','High','Medium','Low','Unknown')),
	event_date                   TEXT,
	records_affected             INTEGER,
	victim_organization_name     TEXT NOT NULL DEFAULT '',
	victim_organization_industry TEXT NOT NULL DEFAULT '',
	attacking_entity_name        TEXT NOT NULL DEFAULT '',
	attack_method                TEXT NOT NULL DEFAULT '',
	is_australian_event          INTEGER NOT NULL DEFAULT 0,
	is_specific_event            INTEGER NOT NULL DEFAULT 0,
	confidence_score             REAL NOT NULL DEFAULT 0,
	australian_relevance_score   REAL NOT NULL DEFAULT 0,
	total_data_sources           INTEGER NOT NULL DEFAULT 0,
	contributing_raw_events      INTEGER NOT NULL DEFAULT 0,
	contributing_enriched_events INTEGER NOT NULL DEFAULT 1 CHECK (contributing_enriched_events >= 1),
	similarity_score             REAL NOT NULL DEFAULT 0,
	deduplication_method         TEXT NOT NULL DEFAULT '',
	status                       TEXT NOT NULL CHECK (status IN ('Active','Superseded','Rejected')),
	created_at                   TEXT NOT NULL,
	updated_at                   TEXT NOT NULL,
	CHECK (is_australian_event = 1 AND is_specific_event = 1)
);

CREATE INDEX IF NOT EXISTS idx_dedup_events_master ON deduplicated_events(master_enriched_id);

CREATE TABLE IF NOT EXISTS entities (
	entity_id              TEXT PRIMARY KEY,
	entity_name            TEXT NOT NULL UNIQUE,
	entity_type            TEXT NOT NULL CHECK (entity_type IN ('government','business','not-for-profit','individual','threat-actor','other')),
	industry                TEXT NOT NULL DEFAULT '',
	turnover                TEXT NOT NULL DEFAULT '',
	employee_count          INTEGER,
	is_australian           INTEGER NOT NULL DEFAULT 0,
	headquarters_location   TEXT NOT NULL DEFAULT '',
	website_url             TEXT NOT NULL DEFAULT '',
	confidence_score        REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS event_deduplication_map (
	raw_id              TEXT NOT NULL REFERENCES raw_events(raw_id),
	enriched_id         TEXT NOT NULL REFERENCES enriched_events(enriched_id) ON DELETE CASCADE,
	dedup_id            TEXT NOT NULL REFERENCES deduplicated_events(dedup_id) ON DELETE CASCADE,
	contribution_type   TEXT NOT NULL CHECK (contribution_type IN ('primary','supporting','duplicate')),
	similarity_to_master REAL NOT NULL DEFAULT 1,
	weight              REAL NOT NULL DEFAULT 1,
	PRIMARY KEY (enriched_id, dedup_id)
);

CREATE INDEX IF NOT EXISTS idx_dedup_map_dedup_id ON event_deduplication_map(dedup_id);

CREATE TABLE IF NOT EXISTS deduplicated_event_sources (
	dedup_id          TEXT NOT NULL REFERENCES deduplicated_events(dedup_id) ON DELETE CASCADE,
	source_url        TEXT NOT NULL,
	source_type       TEXT NOT NULL,
	credibility_score REAL NOT NULL DEFAULT 0,
	content_snippet   TEXT NOT NULL DEFAULT '',
	discovered_at     TEXT NOT NULL,
	PRIMARY KEY (dedup_id, source_url)
);

CREATE TABLE IF NOT EXISTS enriched_event_entities (
	enriched_id       TEXT NOT NULL REFERENCES enriched_events(enriched_id) ON DELETE CASCADE,
	entity_id         TEXT NOT NULL REFERENCES entities(entity_id) ON DELETE CASCADE,
	relationship_type TEXT NOT NULL CHECK (relationship_type IN ('victim','attacker','affected','mentioned')),
	confidence        REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (enriched_id, entity_id, relationship_type)
);

CREATE TABLE IF NOT EXISTS processing_log (
	log_id       TEXT PRIMARY KEY,
	raw_id       TEXT NOT NULL REFERENCES raw_events(raw_id) ON DELETE CASCADE,
	stage        TEXT NOT NULL,
	status       TEXT NOT NULL,
	result_blob  TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processing_log_status ON processing_log(status);
CREATE INDEX IF NOT EXISTS idx_processing_log_raw_id ON processing_log(raw_id);

CREATE TABLE IF NOT EXISTS enrichment_audit_trail (
	audit_id         TEXT PRIMARY KEY,
	raw_id           TEXT NOT NULL REFERENCES raw_events(raw_id) ON DELETE CASCADE,
	enriched_id      TEXT NOT NULL DEFAULT '',
	extraction_blob  TEXT NOT NULL DEFAULT '',
	fact_check_blob  TEXT NOT NULL DEFAULT '',
	validation_blob  TEXT NOT NULL DEFAULT '',
	confidence_blob  TEXT NOT NULL DEFAULT '',
	final_decision   TEXT NOT NULL CHECK (final_decision IN ('AUTO_ACCEPT','ACCEPT_WITH_WARNING','REJECT')),
	final_confidence REAL NOT NULL DEFAULT 0,
	started_at       TEXT NOT NULL,
	completed_at     TEXT NOT NULL,
	UNIQUE (raw_id, started_at)
);

CREATE TABLE IF NOT EXISTS month_processed (
	year         INTEGER NOT NULL,
	month        INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	is_processed INTEGER NOT NULL DEFAULT 0,
	stats        TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (year, month)
);
`
