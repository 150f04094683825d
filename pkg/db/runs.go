package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run is one recorded dataset build.
type Run struct {
	RunID                 int64
	Language              string
	CategoriesCount       int
	ArticlesCount         int
	BalancingModOperand   uint32
	CategoryLinksModified string
	PagesModified         string
	StartedAt             time.Time
	FinishedAt            time.Time
}

// Duration is the wall-clock time the build took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordRun inserts a completed run and returns its id.
func (db *DB) RecordRun(run Run) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (language, categories_count, articles_count, balancing_mod_operand,
			category_links_modified, pages_modified, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Language, run.CategoriesCount, run.ArticlesCount, run.BalancingModOperand,
		run.CategoryLinksModified, run.PagesModified,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recent run for a language, or (nil, nil) when
// none has been recorded yet.
func (db *DB) LatestRun(language string) (*Run, error) {
	row := db.QueryRow(`
		SELECT run_id, language, categories_count, articles_count, balancing_mod_operand,
			category_links_modified, pages_modified, started_at, finished_at
		FROM runs WHERE language = ? ORDER BY run_id DESC LIMIT 1
	`, language)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, language, categories_count, articles_count, balancing_mod_operand,
			category_links_modified, pages_modified, started_at, finished_at
		FROM runs ORDER BY run_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// IsRedundant reports whether a run with the given dump headers would rebuild
// the exact dataset the latest recorded run produced. Unknown headers never
// count as redundant.
func (db *DB) IsRedundant(language, categoryLinksModified, pagesModified string) (bool, error) {
	if categoryLinksModified == "" || pagesModified == "" {
		return false, nil
	}

	latest, err := db.LatestRun(language)
	if err != nil || latest == nil {
		return false, err
	}

	return latest.CategoryLinksModified == categoryLinksModified &&
		latest.PagesModified == pagesModified, nil
}

func scanRun(scan func(...any) error) (*Run, error) {
	var run Run
	var started, finished string
	err := scan(&run.RunID, &run.Language, &run.CategoriesCount, &run.ArticlesCount,
		&run.BalancingModOperand, &run.CategoryLinksModified, &run.PagesModified,
		&started, &finished)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", started, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return nil, fmt.Errorf("bad finished_at %q: %w", finished, err)
	}
	return &run, nil
}
