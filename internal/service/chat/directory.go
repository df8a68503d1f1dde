package chat

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
	"studydesk/internal/service/display"
	"studydesk/internal/service/library"
	"studydesk/internal/utils"
)

// Directory mediates the active chat session: it keeps "the current chat"
// correctly bound to "the currently displayed document" across restarts and
// manual switches. It subscribes to the display signal rather than reading
// any display state directly.
//
// Invariant: while the directory is in use, the current session is never
// nil after Bootstrap - deleting the current session immediately creates a
// replacement.
type Directory struct {
	store     repositories.Store
	projector *library.Projector
	logger    *slog.Logger

	mu              sync.Mutex
	current         *models.ChatSession
	associatedDocID string
	displayed       *display.Document
	projectID       string

	newID func() string
	now   func() time.Time
}

// NewDirectory creates a session directory and subscribes it to the display
// signal. Call Bootstrap before use.
func NewDirectory(
	store repositories.Store,
	projector *library.Projector,
	signal *display.Signal,
	logger *slog.Logger,
) *Directory {
	d := &Directory{
		store:     store,
		projector: projector,
		logger:    logger,
		newID:     utils.GenerateID,
		now:       time.Now,
	}
	if signal != nil {
		signal.Subscribe(d.onDocumentShown)
	}
	return d
}

// SetProject sets the project grouping key forwarded to the library mirror
// on save. When unset, the session's document id is the fallback key.
func (d *Directory) SetProject(projectID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projectID = projectID
}

// Current returns the active session.
func (d *Directory) Current() *models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Bootstrap loads all sessions and selects the active one. With no stored
// sessions it creates a fresh one. Otherwise: the most-recently-updated
// session bound to the currently displayed document wins; with no match the
// single most-recently-updated session wins regardless of document, so the
// user lands back in whatever they were doing last.
func (d *Directory) Bootstrap() *models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessions := d.sessions()
	if len(sessions) == 0 {
		return d.createNewSession(false)
	}

	var pick *models.ChatSession
	if d.displayed != nil && d.displayed.ID != "" {
		for i := range sessions {
			s := &sessions[i]
			if s.DocID != d.displayed.ID {
				continue
			}
			if pick == nil || s.UpdatedAt.After(pick.UpdatedAt) {
				pick = s
			}
		}
	}
	if pick == nil {
		for i := range sessions {
			s := &sessions[i]
			if pick == nil || s.UpdatedAt.After(pick.UpdatedAt) {
				pick = s
			}
		}
	}

	session := *pick
	d.current = &session
	if d.current.DocID != "" {
		d.associatedDocID = d.current.DocID
	} else if d.displayed != nil {
		d.associatedDocID = d.displayed.ID
	}

	d.logger.Debug("session selected",
		"id", d.current.ID,
		"doc_id", d.current.DocID,
	)
	return d.current
}

// CreateNewSession allocates a new session seeded with a welcome message and
// persists it immediately. When forceNew is false and the current session
// holds at most the welcome message, the current session is reused instead -
// this keeps empty sessions from littering storage.
func (d *Directory) CreateNewSession(forceNew bool) *models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createNewSession(forceNew)
}

func (d *Directory) createNewSession(forceNew bool) *models.ChatSession {
	if !forceNew && d.current != nil && len(d.current.Messages) <= 1 {
		return d.current
	}

	title := "New Chat"
	welcome := "Hi! I'm your study assistant. Upload some material or open a document and ask me anything about it."
	docID := d.associatedDocID
	if d.displayed != nil && d.displayed.Title != "" {
		title = "Chat: " + d.displayed.Title
		welcome = fmt.Sprintf("Hi! I'm your study assistant. Ask me anything about %q.", d.displayed.Title)
		if docID == "" {
			docID = d.displayed.ID
		}
	}

	now := d.now()
	session := &models.ChatSession{
		ID:    d.newID(),
		Title: title,
		DocID: docID,
		Messages: []models.Message{
			{
				ID:        d.newID(),
				Type:      models.MessageTypeAI,
				Content:   welcome,
				Timestamp: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	d.current = session
	d.save()
	return session
}

// SwitchSession makes the session with the given id current. The outgoing
// session is saved first - losing unsaved messages on a switch would be a
// correctness bug. An unknown id is a silent no-op.
func (d *Directory) SwitchSession(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current != nil && d.current.ID == id {
		return
	}
	if d.current != nil {
		d.save()
	}

	target := d.find(id)
	if target == nil {
		d.logger.Debug("switch to unknown session ignored", "id", id)
		return
	}

	d.current = target
	if target.DocID != "" {
		d.associatedDocID = target.DocID
	}
}

// Associate records that the displayed document changed. The current
// session, if any, is stamped with the document id and persisted - this is
// how a previously doc-less session becomes doc-bound the first time a
// document is open while chatting.
func (d *Directory) Associate(docID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.associate(docID)
}

func (d *Directory) associate(docID string) {
	d.associatedDocID = docID
	if d.current == nil {
		return
	}
	d.current.DocID = docID
	d.save()
}

func (d *Directory) onDocumentShown(doc display.Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	shown := doc
	d.displayed = &shown
	d.associate(doc.ID)
}

// AppendMessage appends to the current session in memory only. Persistence
// is explicit via Save, so a user question and the AI answer commit as one
// write instead of two.
func (d *Directory) AppendMessage(msg models.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		d.logger.Warn("append with no current session dropped")
		return
	}
	if msg.ID == "" {
		msg.ID = d.newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = d.now()
	}
	d.current.Messages = append(d.current.Messages, msg)
}

// Save persists the current session and mirrors it into the library when a
// grouping key (project id, falling back to document id) is resolvable.
func (d *Directory) Save() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save()
}

func (d *Directory) save() bool {
	if d.current == nil {
		return false
	}
	if d.current.DocID == "" && d.associatedDocID != "" {
		d.current.DocID = d.associatedDocID
	}
	d.current.UpdatedAt = d.now()

	rec, err := models.ToRecord(d.current)
	if err != nil {
		d.logger.Error("encode session failed", "id", d.current.ID, "error", err)
		return false
	}
	stored, persisted := d.store.Upsert(repositories.CollectionChats, rec)
	if err := models.FromRecord(stored, d.current); err != nil {
		d.logger.Warn("decode stored session failed", "id", d.current.ID, "error", err)
	}

	if key := d.groupKey(); key != "" {
		d.projector.UpsertChat(key, d.current)
	}
	return persisted
}

func (d *Directory) groupKey() string {
	if d.projectID != "" {
		return d.projectID
	}
	if d.current != nil {
		return d.current.DocID
	}
	return ""
}

// Delete removes a session. Deleting the current session immediately
// creates a replacement so the chat surface is never left without one.
func (d *Directory) Delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.find(id)
	d.store.Remove(repositories.CollectionChats, id)

	key := d.projectID
	if key == "" && target != nil {
		key = target.DocID
	}
	if key != "" {
		d.projector.DeleteChat(key, id)
	}

	if d.current != nil && d.current.ID == id {
		d.current = nil
		d.createNewSession(true)
	}
}

// Sessions returns every stored session in storage order.
func (d *Directory) Sessions() []models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions()
}

// SessionsForDocument returns every session associated with the document.
func (d *Directory) SessionsForDocument(docID string) []models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	var matches []models.ChatSession
	for _, s := range d.sessions() {
		if s.DocID == docID {
			matches = append(matches, s)
		}
	}
	return matches
}

// MostRecentForDocument returns the most-recently-updated session for the
// document, or nil when none exists.
func (d *Directory) MostRecentForDocument(docID string) *models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	var pick *models.ChatSession
	for _, s := range d.sessions() {
		if s.DocID != docID {
			continue
		}
		session := s
		if pick == nil || session.UpdatedAt.After(pick.UpdatedAt) {
			pick = &session
		}
	}
	return pick
}

func (d *Directory) sessions() []models.ChatSession {
	recs := d.store.GetAll(repositories.CollectionChats)
	sessions := make([]models.ChatSession, 0, len(recs))
	for _, rec := range recs {
		session := models.ChatSession{}
		if err := models.FromRecord(rec, &session); err != nil {
			d.logger.Warn("skipping undecodable session", "id", rec.ID(), "error", err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

func (d *Directory) find(id string) *models.ChatSession {
	for _, s := range d.sessions() {
		if s.ID == id {
			session := s
			return &session
		}
	}
	return nil
}
