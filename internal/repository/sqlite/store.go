package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
	"studydesk/internal/utils"
)

// Object-valued keys stored next to the list collections.
const (
	keySettings = "settings"
	keyLibrary  = "library"
)

// Store implements repositories.Store on an embedded SQLite database.
//
// Each collection is a single row holding the whole collection as one JSON
// value, so a ReplaceAll is one row update: writes to the same collection
// are linearized by call order, and a concurrent opener of the same file
// gets last-writer-wins at whole-collection granularity. There is no finer
// coordination than that.
type Store struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger

	mu    sync.Mutex
	newID func() string
	now   func() time.Time
}

// Open creates or opens the store at path. The schema is created if needed;
// collections are not seeded until Seed is called.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: path,
		logger: logger,
		newID:  utils.GenerateID,
		now:    time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		written_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Seed durably initializes every uninitialized collection before any other
// read. INSERT OR IGNORE inside one transaction keeps a second store opened
// on the same file from racing to double-initialize: either opener wins, the
// other sees a consistent seed.
func (s *Store) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	for _, c := range repositories.Collections {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO collections (name, data, written_at) VALUES (?, ?, ?)`,
			string(c), "[]", now,
		); err != nil {
			return fmt.Errorf("seed collection %s: %w", c, err)
		}
	}

	defaults, err := json.Marshal(models.DefaultSettings())
	if err != nil {
		return fmt.Errorf("marshal default settings: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO collections (name, data, written_at) VALUES (?, ?, ?)`,
		keySettings, string(defaults), now,
	); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO collections (name, data, written_at) VALUES (?, ?, ?)`,
		keyLibrary, "{}", now,
	); err != nil {
		return fmt.Errorf("seed library: %w", err)
	}

	return tx.Commit()
}

// GetAll returns every record in the collection in storage order. A nil
// slice means the collection was never initialized; corrupt JSON is logged
// and treated as empty, never raised.
func (s *Store) GetAll(c repositories.Collection) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getAll(c)
}

func (s *Store) getAll(c repositories.Collection) []models.Record {
	data, ok := s.read(string(c))
	if !ok {
		return nil
	}

	var recs []models.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		s.logger.Warn("corrupt collection data, treating as empty",
			"collection", c,
			"error", err,
		)
		return []models.Record{}
	}
	if recs == nil {
		return []models.Record{}
	}
	return recs
}

// ReplaceAll overwrites the collection wholesale. Returns false when the
// write did not reach durable storage.
func (s *Store) ReplaceAll(c repositories.Collection, recs []models.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceAll(c, recs)
}

func (s *Store) replaceAll(c repositories.Collection, recs []models.Record) bool {
	if recs == nil {
		recs = []models.Record{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		s.logger.Error("serialize collection failed",
			"collection", c,
			"error", err,
		)
		return false
	}
	return s.write(string(c), data)
}

// Upsert merge-replaces the record matching rec's id, or appends a new one.
// Merge precedence follows models.Merge: incoming keys overwrite, absent
// keys are preserved. created_at is immutable after first save; updated_at
// is refreshed on every save.
func (s *Store) Upsert(c repositories.Collection, rec models.Record) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.getAll(c)
	if recs == nil {
		recs = []models.Record{}
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	incoming := models.Merge(models.Record{}, rec) // copy, never mutate the caller's map

	var stored models.Record
	replaced := false
	if id := incoming.ID(); id != "" {
		for i, existing := range recs {
			if existing.ID() != id {
				continue
			}
			merged := models.Merge(existing, incoming)
			if created, ok := existing["created_at"]; ok {
				merged["created_at"] = created
			}
			merged["updated_at"] = now
			recs[i] = merged
			stored = merged
			replaced = true
			break
		}
	}

	if !replaced {
		if incoming.ID() == "" {
			incoming["id"] = s.newID()
		}
		if _, ok := incoming["created_at"]; !ok {
			incoming["created_at"] = now
		}
		incoming["updated_at"] = now
		recs = append(recs, incoming)
		stored = incoming
	}

	return stored, s.replaceAll(c, recs)
}

// Remove filters the id out of the collection. Removing an unknown id is a
// no-op, not an error.
func (s *Store) Remove(c repositories.Collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.getAll(c)
	if recs == nil {
		return true
	}

	filtered := recs[:0]
	removed := false
	for _, rec := range recs {
		if rec.ID() == id {
			removed = true
			continue
		}
		filtered = append(filtered, rec)
	}
	if !removed {
		return true
	}
	return s.replaceAll(c, filtered)
}

// Settings returns the settings object, or nil when uninitialized. Corrupt
// settings fall back to the defaults.
func (s *Store) Settings() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.read(keySettings)
	if !ok {
		return nil
	}

	settings := &models.Settings{}
	if err := json.Unmarshal(data, settings); err != nil {
		s.logger.Warn("corrupt settings data, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return settings
}

// SaveSettings overwrites the settings object.
func (s *Store) SaveSettings(settings *models.Settings) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(settings)
	if err != nil {
		s.logger.Error("serialize settings failed", "error", err)
		return false
	}
	return s.write(keySettings, data)
}

// Library returns the project-grouped mirror, or nil when uninitialized.
func (s *Store) Library() map[string]*models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.read(keyLibrary)
	if !ok {
		return nil
	}

	projects := map[string]*models.Project{}
	if err := json.Unmarshal(data, &projects); err != nil {
		s.logger.Warn("corrupt library data, treating as empty", "error", err)
		return map[string]*models.Project{}
	}
	return projects
}

// SaveLibrary overwrites the project-grouped mirror.
func (s *Store) SaveLibrary(projects map[string]*models.Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if projects == nil {
		projects = map[string]*models.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		s.logger.Error("serialize library failed", "error", err)
		return false
	}
	return s.write(keyLibrary, data)
}

// read fetches the raw JSON for a key. The second return is false when the
// key was never written, distinguishing "uninitialized" from "empty".
func (s *Store) read(name string) ([]byte, bool) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM collections WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("read collection failed, treating as uninitialized",
			"key", name,
			"error", err,
		)
		return nil, false
	}
	return []byte(data), true
}

// write stores raw JSON under a key. Failures are logged and reported via
// the boolean, never raised: in-memory state may be ahead of disk.
func (s *Store) write(name string, data []byte) bool {
	_, err := s.db.Exec(
		`INSERT INTO collections (name, data, written_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, written_at = excluded.written_at`,
		name, string(data), s.now().UTC(),
	)
	if err != nil {
		s.logger.Error("write collection failed, in-memory state ahead of disk",
			"key", name,
			"error", err,
		)
		return false
	}
	return true
}
