package db

import (
	"testing"
	"time"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func sampleRun(language string) Run {
	started := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return Run{
		Language:              language,
		CategoriesCount:       1234,
		ArticlesCount:         56789,
		BalancingModOperand:   2000,
		CategoryLinksModified: "Mon, 01 Aug 2025 03:00:00 GMT",
		PagesModified:         "Mon, 01 Aug 2025 04:00:00 GMT",
		StartedAt:             started,
		FinishedAt:            started.Add(45 * time.Minute),
	}
}

func TestRecordAndLatestRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.RecordRun(sampleRun("en"))
	if err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}
	if id == 0 {
		t.Fatal("RecordRun() returned 0 id")
	}

	latest, err := db.LatestRun("en")
	if err != nil {
		t.Fatalf("LatestRun() error: %v", err)
	}
	if latest == nil {
		t.Fatal("LatestRun() = nil after recording")
	}
	if latest.CategoriesCount != 1234 || latest.ArticlesCount != 56789 {
		t.Errorf("counts = %d/%d, want 1234/56789", latest.CategoriesCount, latest.ArticlesCount)
	}
	if latest.Duration() != 45*time.Minute {
		t.Errorf("Duration() = %v, want 45m", latest.Duration())
	}
}

func TestLatestRunPerLanguage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.RecordRun(sampleRun("en")); err != nil {
		t.Fatal(err)
	}
	de := sampleRun("de")
	de.CategoriesCount = 7
	if _, err := db.RecordRun(de); err != nil {
		t.Fatal(err)
	}

	latest, err := db.LatestRun("de")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.CategoriesCount != 7 {
		t.Errorf("LatestRun(de) = %+v, want the de run", latest)
	}

	missing, err := db.LatestRun("fr")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("LatestRun(fr) = %+v, want nil", missing)
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		run := sampleRun("en")
		run.CategoriesCount = i
		if _, err := db.RecordRun(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs", len(runs))
	}
	// Most recent first.
	if runs[0].CategoriesCount != 2 || runs[1].CategoriesCount != 1 {
		t.Errorf("runs out of order: %d, %d", runs[0].CategoriesCount, runs[1].CategoriesCount)
	}
}

func TestIsRedundant(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run := sampleRun("en")
	if _, err := db.RecordRun(run); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		language string
		links    string
		pages    string
		want     bool
	}{
		{"same headers", "en", run.CategoryLinksModified, run.PagesModified, true},
		{"newer links dump", "en", "Tue, 02 Aug 2025 03:00:00 GMT", run.PagesModified, false},
		{"missing header", "en", "", run.PagesModified, false},
		{"no prior run for language", "de", run.CategoryLinksModified, run.PagesModified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.IsRedundant(tt.language, tt.links, tt.pages)
			if err != nil {
				t.Fatalf("IsRedundant() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsRedundant() = %v, want %v", got, tt.want)
			}
		})
	}
}
