package testutils

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"noteshare/model"
	"noteshare/repository"
	"noteshare/services"

	"github.com/google/uuid"
)

// In-memory stores with the same contracts as the Mongo repositories.

type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*model.User)}
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.RecoveryCodes = append([]string(nil), u.RecoveryCodes...)
	return &c
}

func (m *MemoryUsers) clash(id, username string, email *string) bool {
	for _, u := range m.users {
		if u.ID == id {
			continue
		}
		if u.Username == username {
			return true
		}
		if email != nil && u.Email != nil && *u.Email == *email {
			return true
		}
	}
	return false
}

func (m *MemoryUsers) AddUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok || m.clash(user.ID, user.Username, user.Email) {
		return repository.ErrDuplicate
	}
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *MemoryUsers) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemoryUsers) FindUserByID(_ context.Context, userID string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == userID })
}

func (m *MemoryUsers) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username })
}

func (m *MemoryUsers) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email != nil && *u.Email == email })
}

func (m *MemoryUsers) FindUsersByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (m *MemoryUsers) UpdateUser(_ context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := copyUser(u)
	if patch.Username != nil {
		next.Username = *patch.Username
	}
	if patch.ClearEmail {
		next.Email = nil
	} else if patch.Email != nil {
		email := *patch.Email
		next.Email = &email
	}
	if patch.ProfileImageURL != nil {
		url := *patch.ProfileImageURL
		next.ProfileImageURL = &url
	}
	if m.clash(userID, next.Username, next.Email) {
		return nil, repository.ErrDuplicate
	}
	m.users[userID] = next
	return copyUser(next), nil
}

func (m *MemoryUsers) SetTwoFactor(_ context.Context, userID, secret string, enabled bool, recoveryCodes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TwoFactorEnabled = enabled
	u.TwoFactorSecret = secret
	if secret == "" {
		u.RecoveryCodes = nil
	} else if recoveryCodes != nil {
		u.RecoveryCodes = append([]string(nil), recoveryCodes...)
	}
	return nil
}

func (m *MemoryUsers) ConsumeRecoveryCode(_ context.Context, userID, hashedCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	for i, code := range u.RecoveryCodes {
		if code == hashedCode {
			u.RecoveryCodes = append(u.RecoveryCodes[:i:i], u.RecoveryCodes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryUsers) DeleteUserByID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, userID)
	return nil
}

func (m *MemoryUsers) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type noteRow struct {
	note model.Note
	seq  int64
}

type MemoryNotes struct {
	mu    sync.Mutex
	seq   int64
	notes map[string]*noteRow
}

func NewMemoryNotes() *MemoryNotes {
	return &MemoryNotes{notes: make(map[string]*noteRow)}
}

func copyNote(n model.Note) *model.Note {
	return &n
}

// newestFirst mirrors the repositories' created_at descending sort.
func (m *MemoryNotes) collect(match func(*model.Note) bool) []*model.Note {
	rows := make([]*noteRow, 0)
	for _, r := range m.notes {
		if match(&r.note) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].note.CreatedAt.Equal(rows[j].note.CreatedAt) {
			return rows[i].note.CreatedAt.After(rows[j].note.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]*model.Note, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyNote(r.note))
	}
	return out
}

func (m *MemoryNotes) CreateNote(_ context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[note.ID]; ok {
		return repository.ErrDuplicate
	}
	m.seq++
	m.notes[note.ID] = &noteRow{note: *note, seq: m.seq}
	return nil
}

func (m *MemoryNotes) GetNoteByID(_ context.Context, noteID string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.notes[noteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyNote(r.note), nil
}

func (m *MemoryNotes) GetNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	n, err := m.GetNoteByID(ctx, noteID)
	if err != nil || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return n, nil
}

func (m *MemoryNotes) GetUserNotes(_ context.Context, userID string) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(n *model.Note) bool { return n.UserID == userID }), nil
}

func (m *MemoryNotes) GetAllNotes(_ context.Context) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(*model.Note) bool { return true }), nil
}

func (m *MemoryNotes) GetNotesByIDs(_ context.Context, ids []string) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.collect(func(n *model.Note) bool { return want[n.ID] }), nil
}

func (m *MemoryNotes) SearchNotes(_ context.Context, userID, query string) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	return m.collect(func(n *model.Note) bool {
		if userID != "" && n.UserID != userID {
			return false
		}
		return strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q)
	}), nil
}

func (m *MemoryNotes) UpdateNote(_ context.Context, noteID, userID string, patch model.NotePatch) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.notes[noteID]
	if !ok || r.note.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		r.note.Title = *patch.Title
	}
	if patch.Content != nil {
		r.note.Content = *patch.Content
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL == "" {
			r.note.ImageURL = nil
		} else {
			url := *patch.ImageURL
			r.note.ImageURL = &url
		}
	}
	r.note.UpdatedAt = time.Now().UTC()
	return copyNote(r.note), nil
}

func (m *MemoryNotes) DeleteNote(_ context.Context, noteID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.notes[noteID]
	if !ok || r.note.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.notes, noteID)
	return nil
}

func (m *MemoryNotes) GetUserNoteIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for id, r := range m.notes {
		if r.note.UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryNotes) DeleteUserNotes(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.notes {
		if r.note.UserID == userID {
			delete(m.notes, id)
			n++
		}
	}
	return n, nil
}

type MemoryFavorites struct {
	mu   sync.Mutex
	sets map[string]*model.Favorite // by user id
}

func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{sets: make(map[string]*model.Favorite)}
}

func (m *MemoryFavorites) GetFavorites(_ context.Context, userID string) (*model.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.sets[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *f
	c.Notes = append([]string{}, f.Notes...)
	return &c, nil
}

func (m *MemoryFavorites) AddFavorite(_ context.Context, userID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.sets[userID]
	if !ok {
		f = &model.Favorite{ID: uuid.NewString(), UserID: userID, Notes: []string{}}
		m.sets[userID] = f
	}
	for _, id := range f.Notes {
		if id == noteID {
			return nil
		}
	}
	f.Notes = append(f.Notes, noteID)
	return nil
}

func (m *MemoryFavorites) RemoveFavorite(_ context.Context, userID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.sets[userID]; ok {
		f.Notes = without(f.Notes, map[string]bool{noteID: true})
	}
	return nil
}

func without(ids []string, drop map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func (m *MemoryFavorites) CountFavoritesFor(_ context.Context, noteIDs []string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		want[id] = true
	}
	counts := make(map[string]int)
	for _, f := range m.sets {
		for _, id := range f.Notes {
			if want[id] {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (m *MemoryFavorites) RemoveNotesFromFavorites(_ context.Context, noteIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		drop[id] = true
	}
	for _, f := range m.sets {
		f.Notes = without(f.Notes, drop)
	}
	return nil
}

func (m *MemoryFavorites) DeleteUserFavorites(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, userID)
	return nil
}

type commentRow struct {
	comment model.Comment
	seq     int64
}

type MemoryComments struct {
	mu       sync.Mutex
	seq      int64
	comments map[string]*commentRow
}

func NewMemoryComments() *MemoryComments {
	return &MemoryComments{comments: make(map[string]*commentRow)}
}

func (m *MemoryComments) AddComment(_ context.Context, comment *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.comments[comment.ID] = &commentRow{comment: *comment, seq: m.seq}
	return nil
}

func (m *MemoryComments) GetComment(_ context.Context, commentID string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.comments[commentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := r.comment
	return &c, nil
}

func (m *MemoryComments) GetNoteComments(_ context.Context, noteID string) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []*commentRow{}
	for _, r := range m.comments {
		if r.comment.NoteID == noteID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].comment.CreatedAt.Equal(rows[j].comment.CreatedAt) {
			return rows[i].comment.CreatedAt.After(rows[j].comment.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]*model.Comment, 0, len(rows))
	for _, r := range rows {
		c := r.comment
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemoryComments) DeleteComment(_ context.Context, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[commentID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.comments, commentID)
	return nil
}

func (m *MemoryComments) deleteWhere(match func(*model.Comment) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.comments {
		if match(&r.comment) {
			delete(m.comments, id)
			n++
		}
	}
	return n
}

func (m *MemoryComments) DeleteNoteComments(_ context.Context, noteIDs []string) (int64, error) {
	drop := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		drop[id] = true
	}
	return m.deleteWhere(func(c *model.Comment) bool { return drop[c.NoteID] }), nil
}

func (m *MemoryComments) DeleteUserComments(_ context.Context, userID string) (int64, error) {
	return m.deleteWhere(func(c *model.Comment) bool { return c.UserID == userID }), nil
}

func (m *MemoryComments) CountCommentsFor(_ context.Context, noteIDs []string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		want[id] = true
	}
	counts := make(map[string]int)
	for _, r := range m.comments {
		if want[r.comment.NoteID] {
			counts[r.comment.NoteID]++
		}
	}
	return counts, nil
}

func (m *MemoryComments) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comments)
}

type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*model.Session)}
}

func (m *MemorySessions) CreateSession(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *session
	m.sessions[session.ID] = &c
	return nil
}

func (m *MemorySessions) GetSession(_ context.Context, sessionID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (m *MemorySessions) GetUserActiveSessions(_ context.Context, userID string) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	out := []*model.Session{}
	for _, s := range m.sessions {
		if s.UserID == userID && s.Valid(now) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (m *MemorySessions) EndSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = false
	return nil
}

func (m *MemorySessions) TouchSession(_ context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	s.LastActivityAt = at
	return nil
}

func (m *MemorySessions) DeleteUserSessions(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// CountingTx runs fn directly and records how often a unit of work was requested.
type CountingTx struct {
	mu    sync.Mutex
	Calls int
}

func (t *CountingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	return fn(ctx)
}

type storedObject struct {
	data        []byte
	contentType string
}

// MemoryStorage implements services.Storage in memory.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]storedObject)}
}

func (s *MemoryStorage) Save(_ context.Context, name string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = storedObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (s *MemoryStorage) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, "", services.ErrObjectNotFound
	}
	contentType := obj.contentType
	if contentType == "" {
		contentType = http.DetectContentType(obj.data)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), contentType, nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return services.ErrObjectNotFound
	}
	delete(s.objects, name)
	return nil
}

func (s *MemoryStorage) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
