package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/domain/rules"
	"github.com/Fumiyasu01/matching-app/internal/pkg/validate"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

const (
	maxDisplayNameLength = 100
	maxBioLength         = 1000
	maxLocationLength    = 200
	maxTags              = 20
	avatarURLTTL         = 5 * time.Minute

	maxSlotTitleLength       = 100
	maxSlotDescriptionLength = 1000
	maxSlotDetailLength      = 100
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
	Update(ctx context.Context, p model.Profile, now time.Time) (model.Profile, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, now time.Time) error
}

type SlotStore interface {
	GetSlot(ctx context.Context, id uuid.UUID) (model.AvailabilitySlot, error)
	ListSlotsByUser(ctx context.Context, userID uuid.UUID) ([]model.AvailabilitySlot, error)
	InsertSlot(ctx context.Context, slot model.AvailabilitySlot, now time.Time) (model.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, slot model.AvailabilitySlot) (model.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type AvatarSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type UpdateInput struct {
	DisplayName string
	Bio         string
	Location    string
	LookingFor  enums.LookingFor
	Skills      []string
	Interests   []string
	AvatarKey   string
}

type Service struct {
	store  ProfileStore
	slots  SlotStore
	signer AvatarSigner
	now    func() time.Time
}

func NewService(store ProfileStore, slots SlotStore, signer AvatarSigner) *Service {
	return &Service{
		store:  store,
		slots:  slots,
		signer: signer,
		now:    time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	if id == uuid.Nil {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is not configured")
	}

	profile, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	s.signAvatar(ctx, &profile)

	return profile, nil
}

// Update replaces the editable profile fields. Coordinates are not
// touched here; they move through UpdateLocation only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (model.Profile, error) {
	if id == uuid.Nil {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is not configured")
	}

	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Bio = strings.TrimSpace(input.Bio)
	input.Location = strings.TrimSpace(input.Location)

	if !validate.Required(input.DisplayName) || !validate.MaxLen(input.DisplayName, maxDisplayNameLength) {
		return model.Profile{}, ErrValidation
	}
	if !validate.MaxLen(input.Bio, maxBioLength) || !validate.MaxLen(input.Location, maxLocationLength) {
		return model.Profile{}, ErrValidation
	}
	if _, ok := enums.ParseLookingFor(input.LookingFor.String()); !ok {
		return model.Profile{}, ErrValidation
	}
	if len(input.Skills) > maxTags || len(input.Interests) > maxTags {
		return model.Profile{}, ErrValidation
	}
	if !validate.UniqueStrings(input.Skills) || !validate.UniqueStrings(input.Interests) {
		return model.Profile{}, ErrValidation
	}

	updated, err := s.store.Update(ctx, model.Profile{
		ID:          id,
		DisplayName: input.DisplayName,
		Bio:         input.Bio,
		Location:    input.Location,
		LookingFor:  input.LookingFor,
		Skills:      trimTags(input.Skills),
		Interests:   trimTags(input.Interests),
		AvatarKey:   strings.TrimSpace(input.AvatarKey),
	}, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	s.signAvatar(ctx, &updated)

	return updated, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	if id == uuid.Nil {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("profile store is not configured")
	}
	if err := rules.ValidateCoordinates(lat, lon); err != nil {
		return ErrValidation
	}

	if err := s.store.UpdateLocation(ctx, id, lat, lon, s.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update profile location: %w", err)
	}

	return nil
}

// SlotInput carries the editable fields of an availability slot.
type SlotInput struct {
	Date        time.Time
	TimeSlot    enums.TimeSlot
	TimeDetail  string
	Type        enums.LookingFor
	Title       string
	Description string
	Location    enums.SlotLocation
	Area        string
	Status      enums.SlotStatus
}

func (s *Service) validateSlotInput(input *SlotInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.TimeDetail = strings.TrimSpace(input.TimeDetail)
	input.Area = strings.TrimSpace(input.Area)

	if !validate.Required(input.Title) || !validate.MaxLen(input.Title, maxSlotTitleLength) {
		return ErrValidation
	}
	if !validate.MaxLen(input.Description, maxSlotDescriptionLength) {
		return ErrValidation
	}
	if !validate.MaxLen(input.TimeDetail, maxSlotDetailLength) || !validate.MaxLen(input.Area, maxSlotDetailLength) {
		return ErrValidation
	}
	if input.Date.IsZero() {
		return ErrValidation
	}
	if _, ok := enums.ParseTimeSlot(input.TimeSlot.String()); !ok {
		return ErrValidation
	}
	if _, ok := enums.ParseLookingFor(input.Type.String()); !ok {
		return ErrValidation
	}
	if _, ok := enums.ParseSlotLocation(input.Location.String()); !ok {
		return ErrValidation
	}
	if input.Status == "" {
		input.Status = enums.SlotStatusOpen
	}
	if _, ok := enums.ParseSlotStatus(input.Status.String()); !ok {
		return ErrValidation
	}
	return nil
}

// ListSlots returns every slot the owner published, including closed
// ones, so the profile editor can reopen them.
func (s *Service) ListSlots(ctx context.Context, ownerID uuid.UUID) ([]model.AvailabilitySlot, error) {
	if ownerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.slots == nil {
		return nil, fmt.Errorf("slot store is not configured")
	}

	slots, err := s.slots.ListSlotsByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// ListOpenSlots returns another profile's open slots for the
// discovery detail view.
func (s *Service) ListOpenSlots(ctx context.Context, profileID uuid.UUID) ([]model.AvailabilitySlot, error) {
	if profileID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.store == nil || s.slots == nil {
		return nil, fmt.Errorf("slot store is not configured")
	}

	if _, err := s.store.Get(ctx, profileID); err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	slots, err := s.slots.ListSlotsByUser(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	open := make([]model.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Status == enums.SlotStatusOpen {
			open = append(open, slot)
		}
	}
	return open, nil
}

func (s *Service) AddSlot(ctx context.Context, ownerID uuid.UUID, input SlotInput) (model.AvailabilitySlot, error) {
	if ownerID == uuid.Nil {
		return model.AvailabilitySlot{}, ErrValidation
	}
	if s.slots == nil {
		return model.AvailabilitySlot{}, fmt.Errorf("slot store is not configured")
	}
	if err := s.validateSlotInput(&input); err != nil {
		return model.AvailabilitySlot{}, err
	}

	slot, err := s.slots.InsertSlot(ctx, model.AvailabilitySlot{
		ID:          uuid.New(),
		UserID:      ownerID,
		Date:        input.Date,
		TimeSlot:    input.TimeSlot,
		TimeDetail:  input.TimeDetail,
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Area:        input.Area,
		Status:      input.Status,
	}, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return model.AvailabilitySlot{}, ErrNotFound
		}
		return model.AvailabilitySlot{}, fmt.Errorf("add slot: %w", err)
	}

	return slot, nil
}

// UpdateSlot replaces the editable fields of a slot the caller owns.
func (s *Service) UpdateSlot(ctx context.Context, ownerID, slotID uuid.UUID, input SlotInput) (model.AvailabilitySlot, error) {
	if ownerID == uuid.Nil || slotID == uuid.Nil {
		return model.AvailabilitySlot{}, ErrValidation
	}
	if s.slots == nil {
		return model.AvailabilitySlot{}, fmt.Errorf("slot store is not configured")
	}
	if err := s.validateSlotInput(&input); err != nil {
		return model.AvailabilitySlot{}, err
	}

	current, err := s.slots.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			return model.AvailabilitySlot{}, ErrNotFound
		}
		return model.AvailabilitySlot{}, fmt.Errorf("get slot: %w", err)
	}
	if current.UserID != ownerID {
		return model.AvailabilitySlot{}, ErrForbidden
	}

	updated, err := s.slots.UpdateSlot(ctx, model.AvailabilitySlot{
		ID:          slotID,
		Date:        input.Date,
		TimeSlot:    input.TimeSlot,
		TimeDetail:  input.TimeDetail,
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Area:        input.Area,
		Status:      input.Status,
	})
	if err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			return model.AvailabilitySlot{}, ErrNotFound
		}
		return model.AvailabilitySlot{}, fmt.Errorf("update slot: %w", err)
	}

	return updated, nil
}

func (s *Service) DeleteSlot(ctx context.Context, ownerID, slotID uuid.UUID) error {
	if ownerID == uuid.Nil || slotID == uuid.Nil {
		return ErrValidation
	}
	if s.slots == nil {
		return fmt.Errorf("slot store is not configured")
	}

	current, err := s.slots.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get slot: %w", err)
	}
	if current.UserID != ownerID {
		return ErrForbidden
	}

	if err := s.slots.DeleteSlot(ctx, slotID); err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete slot: %w", err)
	}

	return nil
}

func (s *Service) signAvatar(ctx context.Context, p *model.Profile) {
	if s.signer == nil || p.AvatarKey == "" {
		return
	}
	if signed, err := s.signer.PresignGet(ctx, p.AvatarKey, avatarURLTTL); err == nil {
		p.AvatarURL = &signed
	}
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
