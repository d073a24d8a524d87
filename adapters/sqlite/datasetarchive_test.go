package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/usagelens/adapters/sqlite"
	"github.com/artpar/usagelens/ports"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestDatasetArchive_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	archive := sqlite.NewDatasetArchive(openTestDB(t))

	if _, _, ok, err := archive.Latest(ctx); err != nil || ok {
		t.Fatalf("empty archive: ok=%v err=%v", ok, err)
	}

	first := ports.DatasetMeta{
		ID: "a", Name: "first.csv", RowCount: 2,
		UploadedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	second := ports.DatasetMeta{
		ID: "b", Name: "second.csv", RowCount: 5, RejectedRows: 1,
		UploadedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := archive.Save(ctx, first, "h\nr1\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := archive.Save(ctx, second, "h\nr1\nr2\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	meta, raw, ok, err := archive.Latest(ctx)
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if meta.ID != "b" || meta.RejectedRows != 1 {
		t.Errorf("Latest meta = %+v, want dataset b", meta)
	}
	if raw != "h\nr1\nr2\n" {
		t.Errorf("Latest raw = %q", raw)
	}
}

func TestDatasetArchive_List(t *testing.T) {
	ctx := context.Background()
	archive := sqlite.NewDatasetArchive(openTestDB(t))

	for i, id := range []string{"x", "y"} {
		meta := ports.DatasetMeta{
			ID: id, Name: id + ".csv",
			UploadedAt: time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC),
		}
		if err := archive.Save(ctx, meta, "h\nr\n"); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list, err := archive.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "y" {
		t.Errorf("List = %+v, want newest first", list)
	}
}
