package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"notes_service/internal/models"
	"notes_service/pkg/pagination"
)

// MemoryStore keeps every table in process memory. Transactions work on a
// copy of the tables that replaces the live one only when the callback
// succeeds, so a failed transaction leaves nothing behind.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type collaboratorKey struct {
	noteID uuid.UUID
	userID uuid.UUID
}

type memState struct {
	users         map[uuid.UUID]models.User
	notes         map[uuid.UUID]models.Note
	links         map[uuid.UUID]models.NotePublicLink
	collaborators map[collaboratorKey]models.NoteCollaborator
	comments      []models.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		users:         make(map[uuid.UUID]models.User),
		notes:         make(map[uuid.UUID]models.Note),
		links:         make(map[uuid.UUID]models.NotePublicLink),
		collaborators: make(map[collaboratorKey]models.NoteCollaborator),
	}}
}

func (m *MemoryStore) Notes() NoteRepository       { return &memNotes{store: m} }
func (m *MemoryStore) Comments() CommentRepository { return &memComments{store: m} }
func (m *MemoryStore) Users() UserRepository       { return &memUsers{store: m} }

func (s *memState) clone() *memState {
	c := &memState{
		users:         make(map[uuid.UUID]models.User, len(s.users)),
		notes:         make(map[uuid.UUID]models.Note, len(s.notes)),
		links:         make(map[uuid.UUID]models.NotePublicLink, len(s.links)),
		collaborators: make(map[collaboratorKey]models.NoteCollaborator, len(s.collaborators)),
		comments:      append([]models.Comment(nil), s.comments...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	for k, v := range s.collaborators {
		c.collaborators[k] = v
	}
	return c
}

// view runs fn against the transaction's tables when tx is set, otherwise
// against the live tables under the store lock.
func (m *MemoryStore) view(tx *memState, fn func(st *memState) error) error {
	if tx != nil {
		return fn(tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state)
}

type memNotes struct {
	store *MemoryStore
	tx    *memState
}

func (r *memNotes) Transaction(ctx context.Context, fn func(tx NoteRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.state.clone()
	if err := fn(&memNotes{store: r.store, tx: work}); err != nil {
		return err
	}
	r.store.state = work
	return nil
}

func (r *memNotes) Create(ctx context.Context, note *models.Note) error {
	return r.store.view(r.tx, func(st *memState) error {
		if note.ID == uuid.Nil {
			note.ID = uuid.New()
		}
		if _, ok := st.notes[note.ID]; ok {
			return ErrDuplicate
		}
		if _, ok := st.users[note.OwnerID]; !ok {
			return ErrNotFound
		}
		row := *note
		row.PublicLink, row.Collaborators, row.CommentCount = nil, nil, 0
		st.notes[note.ID] = row
		return nil
	})
}

func (r *memNotes) FindByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.store.view(r.tx, func(st *memState) error {
		n, ok := st.notes[id]
		if !ok {
			return ErrNotFound
		}
		note = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *memNotes) Update(ctx context.Context, id uuid.UUID, changes NoteChanges) error {
	return r.store.view(r.tx, func(st *memState) error {
		n, ok := st.notes[id]
		if !ok {
			return ErrNotFound
		}
		if changes.Title != nil {
			n.Title = *changes.Title
		}
		if changes.Content != nil {
			n.Content = *changes.Content
		}
		if changes.Color != nil {
			n.Color = *changes.Color
		}
		n.UpdatedAt = changes.UpdatedAt
		n.UpdatedBy = changes.UpdatedBy
		st.notes[id] = n
		return nil
	})
}

func (r *memNotes) SetPublic(ctx context.Context, id uuid.UUID, isPublic bool) error {
	return r.store.view(r.tx, func(st *memState) error {
		n, ok := st.notes[id]
		if !ok {
			return ErrNotFound
		}
		n.IsPublic = isPublic
		st.notes[id] = n
		return nil
	})
}

func (r *memNotes) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.view(r.tx, func(st *memState) error {
		if _, ok := st.notes[id]; !ok {
			return ErrNotFound
		}
		kept := st.comments[:0:0]
		for _, c := range st.comments {
			if c.NoteID != id {
				kept = append(kept, c)
			}
		}
		st.comments = kept
		delete(st.links, id)
		for k := range st.collaborators {
			if k.noteID == id {
				delete(st.collaborators, k)
			}
		}
		delete(st.notes, id)
		return nil
	})
}

func (r *memNotes) FindCollaborator(ctx context.Context, noteID, userID uuid.UUID) (*models.NoteCollaborator, error) {
	var collaborator models.NoteCollaborator
	err := r.store.view(r.tx, func(st *memState) error {
		c, ok := st.collaborators[collaboratorKey{noteID, userID}]
		if !ok {
			return ErrNotFound
		}
		collaborator = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &collaborator, nil
}

func (r *memNotes) ListCollaborators(ctx context.Context, noteID uuid.UUID, limit int) ([]models.NoteCollaborator, error) {
	var out []models.NoteCollaborator
	err := r.store.view(r.tx, func(st *memState) error {
		out = st.collaboratorsOf(noteID)
		return nil
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *memNotes) UpsertCollaborator(ctx context.Context, collaborator *models.NoteCollaborator) error {
	return r.store.view(r.tx, func(st *memState) error {
		if _, ok := st.notes[collaborator.NoteID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[collaborator.UserID]; !ok {
			return ErrNotFound
		}
		key := collaboratorKey{collaborator.NoteID, collaborator.UserID}
		if existing, ok := st.collaborators[key]; ok {
			existing.Role = collaborator.Role
			st.collaborators[key] = existing
			return nil
		}
		row := *collaborator
		row.User = models.User{}
		st.collaborators[key] = row
		return nil
	})
}

func (r *memNotes) DeleteCollaborators(ctx context.Context, noteID uuid.UUID) error {
	return r.store.view(r.tx, func(st *memState) error {
		for k := range st.collaborators {
			if k.noteID == noteID {
				delete(st.collaborators, k)
			}
		}
		return nil
	})
}

func (r *memNotes) FindPublicLink(ctx context.Context, noteID uuid.UUID) (*models.NotePublicLink, error) {
	var link models.NotePublicLink
	err := r.store.view(r.tx, func(st *memState) error {
		l, ok := st.links[noteID]
		if !ok {
			return ErrNotFound
		}
		link = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *memNotes) FindPublicLinkBySlug(ctx context.Context, slug string) (*models.NotePublicLink, error) {
	var link models.NotePublicLink
	err := r.store.view(r.tx, func(st *memState) error {
		for _, l := range st.links {
			if l.Slug != slug {
				continue
			}
			n, ok := st.notes[l.NoteID]
			if !ok {
				return ErrNotFound
			}
			link = l
			link.Note = &n
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *memNotes) UpsertPublicLink(ctx context.Context, link *models.NotePublicLink) error {
	return r.store.view(r.tx, func(st *memState) error {
		if _, ok := st.notes[link.NoteID]; !ok {
			return ErrNotFound
		}
		for noteID, l := range st.links {
			if l.Slug == link.Slug && noteID != link.NoteID {
				return ErrDuplicate
			}
		}
		row := *link
		row.Note = nil
		st.links[link.NoteID] = row
		return nil
	})
}

func (r *memNotes) DeletePublicLink(ctx context.Context, noteID uuid.UUID) error {
	return r.store.view(r.tx, func(st *memState) error {
		delete(st.links, noteID)
		return nil
	})
}

func (r *memNotes) ListAccessible(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Note, error) {
	var out []models.Note
	err := r.store.view(r.tx, func(st *memState) error {
		for _, n := range st.notes {
			_, shared := st.collaborators[collaboratorKey{n.ID, userID}]
			if n.OwnerID != userID && !shared {
				continue
			}
			if !cursor.After(n.UpdatedAt, n.ID) {
				continue
			}
			out = append(out, n)
		}
		sort.Slice(out, func(i, j int) bool {
			return pagination.Less(out[i].UpdatedAt, out[i].ID, out[j].UpdatedAt, out[j].ID)
		})
		if len(out) > limit {
			out = out[:limit]
		}
		for i := range out {
			if l, ok := st.links[out[i].ID]; ok {
				link := l
				out[i].PublicLink = &link
			}
			out[i].Collaborators = st.collaboratorsOf(out[i].ID)
			for _, c := range st.comments {
				if c.NoteID == out[i].ID {
					out[i].CommentCount++
				}
			}
		}
		return nil
	})
	return out, err
}

func (s *memState) collaboratorsOf(noteID uuid.UUID) []models.NoteCollaborator {
	var out []models.NoteCollaborator
	for k, c := range s.collaborators {
		if k.noteID != noteID {
			continue
		}
		c.User = s.users[c.UserID]
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out
}

type memComments struct {
	store *MemoryStore
}

func (r *memComments) Create(ctx context.Context, comment *models.Comment) error {
	return r.store.view(nil, func(st *memState) error {
		if _, ok := st.notes[comment.NoteID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[comment.AuthorID]; !ok {
			return ErrNotFound
		}
		if comment.ID == uuid.Nil {
			comment.ID = uuid.New()
		}
		row := *comment
		row.Author = models.User{}
		st.comments = append(st.comments, row)
		return nil
	})
}

func (r *memComments) ListByNote(ctx context.Context, noteID uuid.UUID) ([]models.Comment, error) {
	var out []models.Comment
	err := r.store.view(nil, func(st *memState) error {
		for _, c := range st.comments {
			if c.NoteID == noteID {
				c.Author = st.users[c.AuthorID]
				out = append(out, c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return pagination.Less(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, err
}

type memUsers struct {
	store *MemoryStore
}

func (r *memUsers) Create(ctx context.Context, user *models.User) error {
	return r.store.view(nil, func(st *memState) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, user.Email) {
				return ErrDuplicate
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.store.view(nil, func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.store.view(nil, func(st *memState) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				user = u
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *memUsers) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	q := strings.ToLower(query)
	var out []models.User
	err := r.store.view(nil, func(st *memState) error {
		for _, u := range st.users {
			if strings.Contains(strings.ToLower(u.Email), q) || strings.Contains(strings.ToLower(u.Name), q) {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
