package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- Runs table: one row per completed dataset build
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    language TEXT NOT NULL,
    categories_count INTEGER NOT NULL,
    articles_count INTEGER NOT NULL,
    balancing_mod_operand INTEGER NOT NULL,

    -- Last-Modified headers of the dump assets used for this run;
    -- empty when the run was built from a local cache
    category_links_modified TEXT NOT NULL DEFAULT '',
    pages_modified TEXT NOT NULL DEFAULT '',

    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_language ON runs(language);
CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);
`
