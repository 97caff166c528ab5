package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/models"
)

// memoryDB keeps committed rows. Stores stage writes until their transaction commits.
type memoryDB struct {
	mu             sync.Mutex
	documents      []*models.Document
	processed      map[string]*models.ProcessedMessage
	failDocuments  map[string]bool
	failLedger     error
	failLookup     error
	nextDocumentID int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		processed:     map[string]*models.ProcessedMessage{},
		failDocuments: map[string]bool{},
	}
}

func (db *memoryDB) ledgerRows() []*models.ProcessedMessage {
	db.mu.Lock()
	defer db.mu.Unlock()
	rows := make([]*models.ProcessedMessage, 0, len(db.processed))
	for _, row := range db.processed {
		copied := *row
		rows = append(rows, &copied)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MessageID < rows[j].MessageID })
	return rows
}

func (db *memoryDB) documentCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.documents)
}

type memoryStore struct {
	db        *memoryDB
	parent    *memoryStore
	documents []*models.Document
	processed []*models.ProcessedMessage
}

func newMemoryStore(db *memoryDB) *memoryStore {
	return &memoryStore{db: db}
}

func (s *memoryStore) Documents() interfaces.DocumentRepository { return &memoryDocuments{store: s} }
func (s *memoryStore) ProcessedMessages() interfaces.ProcessedMessageRepository {
	return &memoryProcessed{store: s}
}

func (s *memoryStore) Transaction(_ context.Context, fn func(tx interfaces.Store) error) error {
	tx := &memoryStore{db: s.db, parent: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.apply(tx.documents, tx.processed)
	return nil
}

func (s *memoryStore) apply(documents []*models.Document, processed []*models.ProcessedMessage) {
	if s.parent != nil {
		s.documents = append(s.documents, documents...)
		s.processed = append(s.processed, processed...)
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.documents = append(s.db.documents, documents...)
	for _, row := range processed {
		s.db.processed[row.MailboxConfigurationID+"|"+row.MessageID] = row
	}
}

func (s *memoryStore) hasProcessed(key string) bool {
	for current := s; current != nil; current = current.parent {
		for _, row := range current.processed {
			if row.MailboxConfigurationID+"|"+row.MessageID == key {
				return true
			}
		}
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.processed[key]
	return ok
}

type memoryDocuments struct {
	store *memoryStore
}

func (r *memoryDocuments) Create(_ context.Context, document *models.Document) error {
	db := r.store.db
	db.mu.Lock()
	fail := db.failDocuments[document.Name]
	db.nextDocumentID++
	id := db.nextDocumentID
	db.mu.Unlock()
	if fail {
		return errors.New("document insert failed")
	}
	document.ID = fmt.Sprintf("doc-%d", id)
	document.CreatedAt = time.Now()
	r.store.apply([]*models.Document{document}, nil)
	return nil
}

type memoryProcessed struct {
	store *memoryStore
}

func (r *memoryProcessed) Exists(_ context.Context, configurationID, messageID string) (bool, error) {
	r.store.db.mu.Lock()
	failLookup := r.store.db.failLookup
	r.store.db.mu.Unlock()
	if failLookup != nil {
		return false, failLookup
	}
	return r.store.hasProcessed(configurationID + "|" + messageID), nil
}

func (r *memoryProcessed) Create(_ context.Context, record *models.ProcessedMessage) (bool, error) {
	r.store.db.mu.Lock()
	failLedger := r.store.db.failLedger
	r.store.db.mu.Unlock()
	if failLedger != nil {
		return false, failLedger
	}
	if r.store.hasProcessed(record.MailboxConfigurationID + "|" + record.MessageID) {
		return false, nil
	}
	r.store.apply(nil, []*models.ProcessedMessage{record})
	return true, nil
}

type fakeConfigurations struct {
	mu       sync.Mutex
	configs  map[string]*models.MailboxConfiguration
	statuses map[string]enum.RunStatus
	errors   map[string]string
}

func newFakeConfigurations(configs ...*models.MailboxConfiguration) *fakeConfigurations {
	f := &fakeConfigurations{
		configs:  map[string]*models.MailboxConfiguration{},
		statuses: map[string]enum.RunStatus{},
		errors:   map[string]string{},
	}
	for _, cfg := range configs {
		f.configs[cfg.ID] = cfg
	}
	return f
}

func (f *fakeConfigurations) GetByID(_ context.Context, id string) (*models.MailboxConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configs[id], nil
}

func (f *fakeConfigurations) GetEnabled(_ context.Context) ([]*models.MailboxConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var enabled []*models.MailboxConfiguration
	for _, cfg := range f.configs {
		if cfg.Enabled {
			enabled = append(enabled, cfg)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].ID < enabled[j].ID })
	return enabled, nil
}

func (f *fakeConfigurations) Create(_ context.Context, cfg *models.MailboxConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[cfg.ID] = cfg
	return nil
}

func (f *fakeConfigurations) UpdateRunStatus(_ context.Context, id string, status enum.RunStatus, runError string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	f.errors[id] = runError
	return nil
}

func (f *fakeConfigurations) status(id string) enum.RunStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

// fakeMailbox is the server side state of one account.
type fakeMailbox struct {
	mu          sync.Mutex
	uidValidity uint32
	messages    map[uint32][]byte
	seen        map[uint32]bool
}

func newFakeMailbox(messages ...[]byte) *fakeMailbox {
	m := &fakeMailbox{uidValidity: 7, messages: map[uint32][]byte{}, seen: map[uint32]bool{}}
	for i, raw := range messages {
		m.messages[uint32(i+1)] = raw
	}
	return m
}

func (m *fakeMailbox) isSeen(uid uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[uid]
}

func (m *fakeMailbox) markAllUnseen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = map[uint32]bool{}
}

type fakeConnector struct {
	mu        sync.Mutex
	mailboxes map[string]*fakeMailbox
	openErr   error
	panicFor  string
	opened    int
	closed    int
	params    []interfaces.ConnectParams
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{mailboxes: map[string]*fakeMailbox{}}
}

func (c *fakeConnector) Open(_ context.Context, params interfaces.ConnectParams) (interfaces.MailboxSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = append(c.params, params)
	if c.panicFor == params.Username {
		panic("mailbox session exploded")
	}
	if c.openErr != nil {
		return nil, c.openErr
	}
	mailbox, ok := c.mailboxes[params.Username]
	if !ok {
		return nil, errors.New("unknown account")
	}
	c.opened++
	return &fakeSession{connector: c, mailbox: mailbox}, nil
}

func (c *fakeConnector) counts() (opened, closed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened, c.closed
}

type fakeSession struct {
	connector *fakeConnector
	mailbox   *fakeMailbox
}

func (s *fakeSession) SelectInbox(_ context.Context) error { return nil }

func (s *fakeSession) SearchUnseen(_ context.Context) ([]dto.MessageHandle, error) {
	s.mailbox.mu.Lock()
	defer s.mailbox.mu.Unlock()
	var uids []uint32
	for uid := range s.mailbox.messages {
		if !s.mailbox.seen[uid] {
			uids = append(uids, uid)
		}
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	handles := make([]dto.MessageHandle, 0, len(uids))
	for _, uid := range uids {
		handles = append(handles, dto.MessageHandle{UID: uid, UIDValidity: s.mailbox.uidValidity})
	}
	return handles, nil
}

func (s *fakeSession) FetchAndMarkSeen(ctx context.Context, handles []dto.MessageHandle, fn interfaces.MessageHandler) error {
	for _, handle := range handles {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.mailbox.mu.Lock()
		raw := s.mailbox.messages[handle.UID]
		s.mailbox.mu.Unlock()
		settled, err := fn(ctx, handle, raw)
		if err != nil {
			return err
		}
		if settled {
			s.mailbox.mu.Lock()
			s.mailbox.seen[handle.UID] = true
			s.mailbox.mu.Unlock()
		}
	}
	return nil
}

func (s *fakeSession) Close() error {
	s.connector.mu.Lock()
	defer s.connector.mu.Unlock()
	s.connector.closed++
	return nil
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	failFor map[string]bool
	block   bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{failFor: map[string]bool{}}
}

func (u *fakeUploader) Upload(ctx context.Context, namespace, filename string, data []byte, contentType string) (*dto.StoredObject, error) {
	if u.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failFor[filename] {
		return nil, ingesterrors.Upload(filename, errors.New("connection reset"))
	}
	key := namespace + "/" + filename
	u.uploads = append(u.uploads, key)
	return &dto.StoredObject{
		Key:         key,
		URL:         "https://files.test/" + key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

type fakeFolders struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeFolders) Resolve(_ context.Context, cfg *models.MailboxConfiguration) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, ingesterrors.Folder(cfg.OrganizationID, f.err)
	}
	return &models.Folder{ID: "fold-" + cfg.OrganizationID, OrganizationID: cfg.OrganizationID, CreatedBy: "user-1"}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []dto.DocumentIngested
	err    error
}

func (p *fakePublisher) PublishDirectEvent(_ context.Context, _ string, _ enum.EntityType, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, message.(dto.DocumentIngested))
	return nil
}

func (p *fakePublisher) Close() error { return nil }
