package sqlite

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUninitializedVsSeeded(t *testing.T) {
	store := newTestStore(t)

	if got := store.GetAll(repositories.CollectionDocuments); got != nil {
		t.Errorf("GetAll before seed = %v, want nil (uninitialized)", got)
	}
	if got := store.Settings(); got != nil {
		t.Errorf("Settings before seed = %v, want nil", got)
	}
	if got := store.Library(); got != nil {
		t.Errorf("Library before seed = %v, want nil", got)
	}

	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	for _, c := range repositories.Collections {
		recs := store.GetAll(c)
		if recs == nil {
			t.Errorf("GetAll(%s) after seed = nil, want empty slice", c)
		}
		if len(recs) != 0 {
			t.Errorf("GetAll(%s) after seed has %d records, want 0", c, len(recs))
		}
	}

	settings := store.Settings()
	if settings == nil {
		t.Fatal("Settings after seed = nil")
	}
	want := models.DefaultSettings()
	if *settings != *want {
		t.Errorf("seeded settings = %+v, want %+v", settings, want)
	}

	if lib := store.Library(); lib == nil || len(lib) != 0 {
		t.Errorf("Library after seed = %v, want empty map", lib)
	}
}

func TestSeedPreservesExistingData(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	store.Upsert(repositories.CollectionDocuments, models.Record{"title": "kept"})
	settings := store.Settings()
	settings.Theme = "dark"
	store.SaveSettings(settings)

	if err := store.Seed(); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	if recs := store.GetAll(repositories.CollectionDocuments); len(recs) != 1 {
		t.Errorf("re-seed clobbered documents: %d records, want 1", len(recs))
	}
	if got := store.Settings(); got.Theme != "dark" {
		t.Errorf("re-seed clobbered settings: theme = %q, want dark", got.Theme)
	}
}

func TestUpsertAssignsIdentityAndTimestamps(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	store.newID = func() string { return "fixed-id" }
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	stored, persisted := store.Upsert(repositories.CollectionDocuments, models.Record{"title": "fresh"})
	if !persisted {
		t.Fatal("Upsert reported not persisted")
	}
	if stored.ID() != "fixed-id" {
		t.Errorf("id = %q, want fixed-id", stored.ID())
	}
	wantStamp := now.Format(time.RFC3339Nano)
	if stored["created_at"] != wantStamp {
		t.Errorf("created_at = %v, want %v", stored["created_at"], wantStamp)
	}
	if stored["updated_at"] != wantStamp {
		t.Errorf("updated_at = %v, want %v", stored["updated_at"], wantStamp)
	}
}

func TestUpsertMergeSemantics(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return t1 }

	store.Upsert(repositories.CollectionDocuments, models.Record{
		"id":      "doc-1",
		"title":   "Original",
		"content": "body stays",
	})

	t2 := t1.Add(time.Hour)
	store.now = func() time.Time { return t2 }

	stored, persisted := store.Upsert(repositories.CollectionDocuments, models.Record{
		"id":         "doc-1",
		"title":      "Renamed",
		"created_at": "2001-01-01T00:00:00Z", // must not stick
	})
	if !persisted {
		t.Fatal("Upsert reported not persisted")
	}

	if stored["title"] != "Renamed" {
		t.Errorf("incoming key should overwrite: title = %v", stored["title"])
	}
	if stored["content"] != "body stays" {
		t.Errorf("absent key should be preserved: content = %v", stored["content"])
	}
	if stored["created_at"] != t1.Format(time.RFC3339Nano) {
		t.Errorf("created_at must be immutable: got %v", stored["created_at"])
	}
	if stored["updated_at"] != t2.Format(time.RFC3339Nano) {
		t.Errorf("updated_at must refresh: got %v", stored["updated_at"])
	}

	if recs := store.GetAll(repositories.CollectionDocuments); len(recs) != 1 {
		t.Errorf("merge should replace in place, found %d records", len(recs))
	}
}

func TestUpsertDoesNotMutateCaller(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	rec := models.Record{"title": "untouched"}
	store.Upsert(repositories.CollectionDocuments, rec)

	if _, ok := rec["id"]; ok {
		t.Error("caller's record gained an id")
	}
	if _, ok := rec["updated_at"]; ok {
		t.Error("caller's record gained a timestamp")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	store.Upsert(repositories.CollectionChats, models.Record{"id": "chat-1", "title": "a"})
	store.Upsert(repositories.CollectionChats, models.Record{"id": "chat-2", "title": "b"})

	if ok := store.Remove(repositories.CollectionChats, "chat-1"); !ok {
		t.Error("Remove existing id = false")
	}
	if recs := store.GetAll(repositories.CollectionChats); len(recs) != 1 || recs[0].ID() != "chat-2" {
		t.Errorf("after remove: %v", recs)
	}

	if ok := store.Remove(repositories.CollectionChats, "chat-1"); !ok {
		t.Error("Remove unknown id should be a no-op success")
	}
	if recs := store.GetAll(repositories.CollectionChats); len(recs) != 1 {
		t.Errorf("repeat remove changed the collection: %v", recs)
	}
}

func TestReplaceAllNilMeansEmpty(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	store.Upsert(repositories.CollectionFiles, models.Record{"id": "f-1"})

	if ok := store.ReplaceAll(repositories.CollectionFiles, nil); !ok {
		t.Fatal("ReplaceAll(nil) = false")
	}
	recs := store.GetAll(repositories.CollectionFiles)
	if recs == nil {
		t.Fatal("collection read back as uninitialized after ReplaceAll(nil)")
	}
	if len(recs) != 0 {
		t.Errorf("collection should be empty, got %v", recs)
	}
}

func TestCorruptCollectionTreatedAsEmpty(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	if ok := store.write(string(repositories.CollectionDocuments), []byte("{not json")); !ok {
		t.Fatal("raw write failed")
	}

	recs := store.GetAll(repositories.CollectionDocuments)
	if recs == nil {
		t.Fatal("corrupt data must read as empty, not uninitialized")
	}
	if len(recs) != 0 {
		t.Errorf("corrupt data must read as empty, got %v", recs)
	}
}

func TestCorruptSettingsFallBackToDefaults(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	if ok := store.write(keySettings, []byte("][")); !ok {
		t.Fatal("raw write failed")
	}

	got := store.Settings()
	if got == nil {
		t.Fatal("Settings() = nil for corrupt data")
	}
	if *got != *models.DefaultSettings() {
		t.Errorf("corrupt settings should fall back to defaults, got %+v", got)
	}
}

func TestLibraryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	projects := map[string]*models.Project{
		"math": {
			Name: "math",
			Docs: map[string]*models.DocMirror{
				"doc-1": {ID: "doc-1", Title: "Algebra", FileName: "algebra.md"},
			},
			Chats: map[string]*models.ChatMirror{},
			Files: map[string]*models.FileMirror{},
		},
	}
	if ok := store.SaveLibrary(projects); !ok {
		t.Fatal("SaveLibrary() = false")
	}

	got := store.Library()
	proj, ok := got["math"]
	if !ok {
		t.Fatalf("library missing project: %v", got)
	}
	if proj.Docs["doc-1"] == nil || proj.Docs["doc-1"].Title != "Algebra" {
		t.Errorf("doc mirror lost in round trip: %+v", proj.Docs)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := Open(path, logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	stored, _ := store.Upsert(repositories.CollectionDocuments, models.Record{"title": "durable"})
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path, logger)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	recs := reopened.GetAll(repositories.CollectionDocuments)
	if len(recs) != 1 || recs[0].ID() != stored.ID() {
		t.Errorf("record did not survive reopen: %v", recs)
	}
}
