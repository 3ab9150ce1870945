package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"notes_service/internal/dto"
	"notes_service/internal/services"
	"notes_service/pkg/apperrors"
)

type Fixture struct {
	Users []UserFixture `yaml:"users"`
	Notes []NoteFixture `yaml:"notes"`
}

type UserFixture struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

type NoteFixture struct {
	Owner      string           `yaml:"owner"`
	Title      string           `yaml:"title"`
	Content    string           `yaml:"content"`
	Color      string           `yaml:"color"`
	Visibility string           `yaml:"visibility"`
	Invitee    string           `yaml:"invitee"`
	Comments   []CommentFixture `yaml:"comments"`
}

type CommentFixture struct {
	Author string `yaml:"author"`
	Body   string `yaml:"body"`
}

func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Seeder loads fixtures through the services so every row obeys the same
// rules as API traffic.
type Seeder struct {
	users    *services.UserService
	notes    *services.NoteService
	comments *services.CommentService
	log      zerolog.Logger

	ids map[string]uuid.UUID
}

func NewSeeder(users *services.UserService, notes *services.NoteService, comments *services.CommentService, log zerolog.Logger) *Seeder {
	return &Seeder{
		users:    users,
		notes:    notes,
		comments: comments,
		log:      log,
		ids:      map[string]uuid.UUID{},
	}
}

// Apply creates users, then notes with their sharing mode, then comments.
// Users that already exist are signed in instead.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) error {
	for _, u := range f.Users {
		res, err := s.users.Register(ctx, dto.RegisterReq{Email: u.Email, Name: u.Name, Password: u.Password})
		if errors.Is(err, apperrors.ErrConflict) {
			res, err = s.users.Login(ctx, dto.LoginReq{Email: u.Email, Password: u.Password})
		}
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		s.ids[u.Email] = res.User.ID
	}

	for _, n := range f.Notes {
		owner, err := s.lookup(n.Owner)
		if err != nil {
			return fmt.Errorf("note %q: %w", n.Title, err)
		}
		req := dto.CreateNoteReq{Title: n.Title, Content: n.Content, Color: n.Color, Visibility: n.Visibility}
		if n.Invitee != "" {
			invitee, err := s.lookup(n.Invitee)
			if err != nil {
				return fmt.Errorf("note %q: %w", n.Title, err)
			}
			req.InviteeID = &invitee
		}
		created, err := s.notes.Create(ctx, owner, req)
		if err != nil {
			return fmt.Errorf("note %q: %w", n.Title, err)
		}
		ev := s.log.Info().Str("note_id", created.ID.String()).Str("visibility", string(created.Visibility))
		if created.Slug != nil {
			ev = ev.Str("slug", *created.Slug)
		}
		ev.Msg("seeded note")

		for _, c := range n.Comments {
			author, err := s.lookup(c.Author)
			if err != nil {
				return fmt.Errorf("comment on %q: %w", n.Title, err)
			}
			if _, err := s.comments.Add(ctx, author, created.ID, dto.AddCommentReq{Body: c.Body}); err != nil {
				return fmt.Errorf("comment on %q: %w", n.Title, err)
			}
		}
	}
	return nil
}

func (s *Seeder) lookup(email string) (uuid.UUID, error) {
	id, ok := s.ids[email]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown user %q", email)
	}
	return id, nil
}

var fakeColors = []string{"bg-yellow-200", "bg-green-200", "bg-blue-200", "bg-pink-200", "bg-purple-200"}

// Fake adds n private notes with generated text for owner.
func (s *Seeder) Fake(ctx context.Context, owner string, n int) error {
	ownerID, err := s.lookup(owner)
	if err != nil {
		return err
	}
	fake := faker.New()
	for i := 0; i < n; i++ {
		req := dto.CreateNoteReq{
			Title:   fake.Lorem().Sentence(4),
			Content: fake.Lorem().Paragraph(3),
			Color:   fakeColors[fake.IntBetween(0, len(fakeColors)-1)],
		}
		if _, err := s.notes.Create(ctx, ownerID, req); err != nil {
			return fmt.Errorf("fake note %d: %w", i, err)
		}
	}
	s.log.Info().Int("count", n).Str("owner", owner).Msg("seeded fake notes")
	return nil
}
