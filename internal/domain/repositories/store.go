package repositories

import (
	"studydesk/internal/domain/models"
)

// Collection names one of the flat, independently addressable sets of
// entities in the store.
type Collection string

const (
	CollectionDocuments Collection = "documents"
	CollectionChats     Collection = "chats"
	CollectionFiles     Collection = "uploaded_files"
)

// Collections lists every list-valued collection, in seed order.
var Collections = []Collection{
	CollectionDocuments,
	CollectionChats,
	CollectionFiles,
}

// Store is the durable, synchronous key-to-JSON mapping behind every
// collection. It is the only component that touches durable storage.
//
// Failure semantics: write failures are reported through boolean returns and
// never escape as errors, so a storage fault cannot abort an in-progress
// user action. Read-side corruption is logged and treated as an empty
// collection.
type Store interface {
	// GetAll returns every record in the collection, in storage
	// (insertion) order. A nil slice means the collection was never
	// initialized; a non-nil empty slice means initialized but empty.
	GetAll(c Collection) []models.Record

	// ReplaceAll overwrites the collection wholesale. Returns false when
	// the write did not reach durable storage; the caller must treat
	// in-memory state as ahead of disk.
	ReplaceAll(c Collection, recs []models.Record) bool

	// Upsert merge-replaces the record matching rec's id, or appends a
	// new record (assigning an id when absent). created_at is stamped on
	// first save and immutable afterwards; updated_at is refreshed on
	// every save. Returns the stored record and whether it was persisted.
	Upsert(c Collection, rec models.Record) (models.Record, bool)

	// Remove filters the id out of the collection. Removing an unknown id
	// is not an error.
	Remove(c Collection, id string) bool

	// Settings returns the settings object, or nil when uninitialized.
	Settings() *models.Settings

	// SaveSettings overwrites the settings object.
	SaveSettings(s *models.Settings) bool

	// Library returns the project-grouped mirror, or nil when
	// uninitialized.
	Library() map[string]*models.Project

	// SaveLibrary overwrites the project-grouped mirror.
	SaveLibrary(projects map[string]*models.Project) bool

	// Seed durably initializes every uninitialized collection (empty
	// list, default settings object, empty library) before any other
	// read. Seeding is idempotent and safe against a concurrent opener.
	Seed() error

	Close() error
}
