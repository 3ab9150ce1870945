package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notes_service/internal/access"
	"notes_service/internal/dto"
	"notes_service/internal/events"
	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/internal/sharing"
	"notes_service/internal/slug"
	"notes_service/pkg/apperrors"
	"notes_service/pkg/pagination"
)

type NoteService struct {
	notes     repositories.NoteRepository
	users     repositories.UserRepository
	machine   *sharing.Machine
	publisher EventPublisher
	cache     PageCache
	activity  ActivityLog
	log       zerolog.Logger
	now       func() time.Time
}

type NoteOption func(*NoteService)

func WithPublisher(p EventPublisher) NoteOption { return func(s *NoteService) { s.publisher = p } }
func WithPageCache(c PageCache) NoteOption      { return func(s *NoteService) { s.cache = c } }
func WithActivityLog(a ActivityLog) NoteOption  { return func(s *NoteService) { s.activity = a } }
func WithLogger(l zerolog.Logger) NoteOption    { return func(s *NoteService) { s.log = l } }
func WithClock(now func() time.Time) NoteOption { return func(s *NoteService) { s.now = now } }

func NewNoteService(notes repositories.NoteRepository, users repositories.UserRepository, slugs slug.Generator, opts ...NoteOption) *NoteService {
	s := &NoteService{
		notes:   notes,
		users:   users,
		machine: sharing.NewMachine(slugs),
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of the notes the caller owns or collaborates on.
func (s *NoteService) List(ctx context.Context, caller uuid.UUID, limit int, cursor string) (*dto.NotePage, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.notes.ListAccessible(ctx, caller, pagination.Decode(cursor), limit+1)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	rows, next := pagination.Trim(rows, limit, func(n models.Note) pagination.Cursor {
		return pagination.Cursor{UpdatedAt: n.UpdatedAt, ID: n.ID}
	})

	page := &dto.NotePage{Items: make([]dto.NoteListItem, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, s.listItem(&rows[i], caller))
	}
	if next != nil {
		encoded := next.Encode()
		page.NextCursor = &encoded
	}
	return page, nil
}

func (s *NoteService) listItem(n *models.Note, caller uuid.UUID) dto.NoteListItem {
	facts := access.Facts{OwnerID: n.OwnerID, IsPublic: n.IsPublic}
	for i := range n.Collaborators {
		if n.Collaborators[i].UserID == caller {
			facts.Collaborator = &n.Collaborators[i]
			break
		}
	}
	role := access.Resolve(facts, caller)

	item := dto.NoteListItem{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		Color:         n.Color,
		UpdatedAt:     n.UpdatedAt,
		OwnerID:       n.OwnerID,
		Role:          string(role),
		Visibility:    visibilityOf(s.log, n, n.PublicLink != nil, len(n.Collaborators)),
		Collaborators: collaboratorSummaries(n.Collaborators),
		CommentsCount: n.CommentCount,
	}
	if item.Color == "" {
		item.Color = models.DefaultColor
	}
	if role == access.RoleOwner && n.PublicLink != nil {
		item.Slug = optionalSlug(n.PublicLink.Slug)
	}
	return item
}

func parseMode(raw string) (models.Visibility, error) {
	if strings.TrimSpace(raw) == "" {
		return models.VisibilityPrivate, nil
	}
	mode, ok := models.ParseVisibility(raw)
	if !ok {
		return "", apperrors.InvalidInput("INVALID_VISIBILITY", fmt.Sprintf("visibility must be private, team or public, got %q", raw))
	}
	return mode, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.InvalidInput("TITLE_REQUIRED", "title must not be empty")
	}
	return title, nil
}

func normalizeColor(color string) string {
	if color = strings.TrimSpace(color); color == "" {
		return models.DefaultColor
	}
	return color
}

// checkInvitee runs outside any transaction; the note transaction may only
// touch the note repository.
func (s *NoteService) checkInvitee(ctx context.Context, ownerID uuid.UUID, invitee *uuid.UUID) error {
	if invitee == nil {
		return nil
	}
	if *invitee == ownerID {
		return apperrors.InvalidInput("INVALID_INVITEE", "the owner cannot be invited to their own note")
	}
	if _, err := s.users.FindByID(ctx, *invitee); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.InvalidInput("INVITEE_NOT_FOUND", "invited user does not exist")
		}
		return fmt.Errorf("load invitee: %w", err)
	}
	return nil
}

// Create inserts a note and applies its initial sharing mode atomically.
func (s *NoteService) Create(ctx context.Context, caller uuid.UUID, req dto.CreateNoteReq) (*dto.NoteMutation, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(req.Visibility)
	if err != nil {
		return nil, err
	}
	invitee := req.InviteeID
	if mode != models.VisibilityTeam {
		invitee = nil
	}
	if err := s.checkInvitee(ctx, caller, invitee); err != nil {
		return nil, err
	}

	now := models.Timestamp(s.now())
	note := &models.Note{
		ID:        uuid.New(),
		OwnerID:   caller,
		Title:     title,
		Content:   req.Content,
		Color:     normalizeColor(req.Color),
		CreatedAt: now,
		UpdatedAt: now,
		UpdatedBy: caller,
	}

	var res sharing.Result
	err = s.notes.Transaction(ctx, func(tx repositories.NoteRepository) error {
		if err := tx.Create(ctx, note); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		res, err = s.machine.Apply(ctx, tx, note.ID, sharing.Transition{Mode: mode, Invitee: invitee})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("note_id", note.ID.String()).
		Str("visibility", string(res.Visibility)).
		Msg("note created")

	event := events.NewNoteEvent(events.NoteCreated, note.ID, note.OwnerID, caller, now).WithTarget(invitee)
	event.Visibility, event.Slug = string(res.Visibility), res.Slug
	s.publish(ctx, event)

	return &dto.NoteMutation{ID: note.ID, Visibility: res.Visibility, Slug: optionalSlug(res.Slug)}, nil
}

// ShareState reports the note's mode, its link and its first collaborator.
func (s *NoteService) ShareState(ctx context.Context, caller, noteID uuid.UUID) (*dto.ShareState, error) {
	note, role, err := resolveRole(ctx, s.notes, noteID, caller)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(role, caller, access.ActionView); err != nil {
		return nil, err
	}

	link, collaborators, err := s.sharingRows(ctx, s.notes, noteID)
	if err != nil {
		return nil, err
	}

	state := &dto.ShareState{
		ID:            note.ID,
		IsPublic:      note.IsPublic,
		Visibility:    visibilityOf(s.log, note, link != nil, len(collaborators)),
		Collaborators: collaboratorSummaries(collaborators),
	}
	if len(state.Collaborators) > 1 {
		state.Collaborators = state.Collaborators[:1]
	}
	if link != nil {
		state.PublicLink = &dto.PublicLinkSummary{Slug: link.Slug}
	}
	return state, nil
}

func (s *NoteService) sharingRows(ctx context.Context, repo repositories.NoteRepository, noteID uuid.UUID) (*models.NotePublicLink, []models.NoteCollaborator, error) {
	link, err := repo.FindPublicLink(ctx, noteID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, fmt.Errorf("load public link: %w", err)
		}
		link = nil
	}
	collaborators, err := repo.ListCollaborators(ctx, noteID, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("load collaborators: %w", err)
	}
	return link, collaborators, nil
}

// Update applies field changes and an optional sharing transition in one
// transaction. Every update bumps updatedAt and updatedBy.
func (s *NoteService) Update(ctx context.Context, caller, noteID uuid.UUID, req dto.UpdateNoteReq) (*dto.NoteMutation, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	changes := repositories.NoteChanges{Content: req.Content}
	if req.Title != nil {
		title, err := normalizeTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		changes.Title = &title
	}
	if req.Color != nil {
		color := normalizeColor(*req.Color)
		changes.Color = &color
	}
	var transition *sharing.Transition
	if req.Visibility != nil {
		mode, err := parseMode(*req.Visibility)
		if err != nil {
			return nil, err
		}
		transition = &sharing.Transition{Mode: mode}
		if mode == models.VisibilityTeam {
			transition.Invitee = req.InviteeID
		}
	}
	editsContent := changes.Title != nil || changes.Content != nil || changes.Color != nil

	note, role, err := resolveRole(ctx, s.notes, noteID, caller)
	if err != nil {
		return nil, err
	}
	if editsContent || transition == nil {
		if err := access.Authorize(role, caller, access.ActionEdit); err != nil {
			return nil, err
		}
	}
	if transition != nil {
		if err := access.Authorize(role, caller, access.ActionChangeVisibility); err != nil {
			return nil, err
		}
		if err := s.checkInvitee(ctx, note.OwnerID, transition.Invitee); err != nil {
			return nil, err
		}
	}

	changes.UpdatedAt = models.Timestamp(s.now())
	changes.UpdatedBy = caller

	var res sharing.Result
	err = s.notes.Transaction(ctx, func(tx repositories.NoteRepository) error {
		if err := tx.Update(ctx, noteID, changes); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return errNoteNotFound
			}
			return fmt.Errorf("update note: %w", err)
		}
		if transition != nil {
			res, err = s.machine.Apply(ctx, tx, noteID, *transition)
			return err
		}

		current, err := tx.FindByID(ctx, noteID)
		if err != nil {
			return fmt.Errorf("reload note: %w", err)
		}
		link, collaborators, err := s.sharingRows(ctx, tx, noteID)
		if err != nil {
			return err
		}
		res.Visibility = visibilityOf(s.log, current, link != nil, len(collaborators))
		if link != nil {
			res.Slug, res.PreviousSlug = link.Slug, link.Slug
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, res.PreviousSlug)

	if editsContent || transition == nil {
		event := events.NewNoteEvent(events.NoteUpdated, noteID, note.OwnerID, caller, changes.UpdatedAt)
		event.Visibility, event.Slug = string(res.Visibility), res.Slug
		if transition == nil {
			event.PreviousSlug = res.PreviousSlug
		}
		s.publish(ctx, event)
	}
	if transition != nil {
		s.log.Info().
			Str("note_id", noteID.String()).
			Str("to", string(transition.Mode)).
			Str("visibility", string(res.Visibility)).
			Msg("note visibility changed")

		event := events.NewNoteEvent(events.NoteVisibilityChanged, noteID, note.OwnerID, caller, changes.UpdatedAt).WithTarget(transition.Invitee)
		event.Visibility, event.Slug, event.PreviousSlug = string(res.Visibility), res.Slug, res.PreviousSlug
		s.publish(ctx, event)
	}

	return &dto.NoteMutation{ID: noteID, Visibility: res.Visibility, Slug: optionalSlug(res.Slug)}, nil
}

// Delete removes the note with its comments, link and collaborators.
func (s *NoteService) Delete(ctx context.Context, caller, noteID uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	note, role, err := resolveRole(ctx, s.notes, noteID, caller)
	if err != nil {
		return err
	}
	if err := access.Authorize(role, caller, access.ActionDelete); err != nil {
		return err
	}

	var previousSlug string
	err = s.notes.Transaction(ctx, func(tx repositories.NoteRepository) error {
		link, err := tx.FindPublicLink(ctx, noteID)
		switch {
		case err == nil:
			previousSlug = link.Slug
		case !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("load public link: %w", err)
		}
		if err := tx.Delete(ctx, noteID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return errNoteNotFound
			}
			return fmt.Errorf("delete note: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, previousSlug)
	s.log.Info().Str("note_id", noteID.String()).Msg("note deleted")

	event := events.NewNoteEvent(events.NoteDeleted, noteID, note.OwnerID, caller, models.Timestamp(s.now()))
	event.PreviousSlug = previousSlug
	s.publish(ctx, event)
	return nil
}

// PublicNote renders the note behind slug while it is still public.
func (s *NoteService) PublicNote(ctx context.Context, slugValue string) (*dto.PublicNote, error) {
	notFound := apperrors.NotFound("PUBLIC_NOTE_NOT_FOUND", "public note not found")
	if slugValue == "" {
		return nil, notFound
	}

	if s.cache != nil {
		page, err := s.cache.GetPublicPage(ctx, slugValue)
		if err != nil {
			s.log.Warn().Err(err).Str("slug", slugValue).Msg("public page cache read failed")
		} else if page != nil {
			return page, nil
		}
	}

	link, err := s.notes.FindPublicLinkBySlug(ctx, slugValue)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("load public link: %w", err)
	}
	if link.Note == nil || !link.Note.IsPublic {
		return nil, notFound
	}

	page := &dto.PublicNote{
		ID:        link.Note.ID,
		Title:     link.Note.Title,
		Content:   link.Note.Content,
		Color:     link.Note.Color,
		UpdatedAt: link.Note.UpdatedAt,
	}
	if s.cache != nil {
		if err := s.cache.SetPublicPage(ctx, slugValue, page); err != nil {
			s.log.Warn().Err(err).Str("slug", slugValue).Msg("public page cache write failed")
		} else if !s.stillPublished(ctx, slugValue, page) {
			s.invalidate(ctx, slugValue)
		}
	}
	return page, nil
}

// stillPublished re-reads the link after a cache write. A change that
// committed between the first read and the write has either invalidated
// after the write or is visible here.
func (s *NoteService) stillPublished(ctx context.Context, slugValue string, page *dto.PublicNote) bool {
	link, err := s.notes.FindPublicLinkBySlug(ctx, slugValue)
	if err != nil {
		return false
	}
	return link.Note != nil && link.Note.IsPublic && link.Note.UpdatedAt.Equal(page.UpdatedAt)
}

// Activity returns the note's recent events. Only the owner may read it.
func (s *NoteService) Activity(ctx context.Context, caller, noteID uuid.UUID, limit int) ([]events.NoteEvent, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	_, role, err := resolveRole(ctx, s.notes, noteID, caller)
	if err != nil {
		return nil, err
	}
	if role != access.RoleOwner {
		return nil, apperrors.Forbidden("NOTE_ACTIVITY_DENIED", "only the owner can read a note's activity")
	}
	if s.activity == nil {
		return []events.NoteEvent{}, nil
	}
	out, err := s.activity.Activity(ctx, noteID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}
	return out, nil
}

func (s *NoteService) invalidate(ctx context.Context, slugValue string) {
	if s.cache == nil || slugValue == "" {
		return
	}
	if err := s.cache.InvalidatePublicPage(ctx, slugValue); err != nil {
		s.log.Warn().Err(err).Str("slug", slugValue).Msg("public page invalidation failed")
	}
}

func (s *NoteService) publish(ctx context.Context, event *events.NoteEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("event", event.EventType).
			Str("note_id", event.NoteID).
			Msg("event publish failed")
	}
}
