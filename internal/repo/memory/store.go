// Package memory is the storage backend for demo and offline
// deployments. It gives the same guarantees as the postgres backend,
// including at-most-one match per user pair under concurrent swipes,
// behind a single mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/domain/rules"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type pairKey struct {
	a uuid.UUID
	b uuid.UUID
}

func directedKey(from, to uuid.UUID) pairKey {
	return pairKey{a: from, b: to}
}

func canonicalKey(a, b uuid.UUID) pairKey {
	x, y := model.CanonicalPair(a, b)
	return pairKey{a: x, b: y}
}

type Store struct {
	mu sync.RWMutex

	profiles    map[uuid.UUID]model.Profile
	swipes      map[pairKey]model.Swipe
	matches     map[uuid.UUID]model.Match
	matchByPair map[pairKey]uuid.UUID
	messages    map[uuid.UUID][]model.Message
	blocks      map[pairKey]model.BlockRecord
	reports     []model.Report
	slots       map[uuid.UUID]model.AvailabilitySlot
}

func NewStore() *Store {
	return &Store{
		profiles:    make(map[uuid.UUID]model.Profile),
		swipes:      make(map[pairKey]model.Swipe),
		matches:     make(map[uuid.UUID]model.Match),
		matchByPair: make(map[pairKey]uuid.UUID),
		messages:    make(map[uuid.UUID][]model.Message),
		blocks:      make(map[pairKey]model.BlockRecord),
		slots:       make(map[uuid.UUID]model.AvailabilitySlot),
	}
}

// PutProfile inserts or replaces a profile. Used by seeding and tests.
func (s *Store) PutProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = cloneProfile(p)
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, storage.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (s *Store) Update(ctx context.Context, p model.Profile, now time.Time) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[p.ID]
	if !ok {
		return model.Profile{}, storage.ErrProfileNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	current.DisplayName = p.DisplayName
	current.Bio = p.Bio
	current.Location = p.Location
	current.LookingFor = p.LookingFor
	current.Skills = append([]string(nil), p.Skills...)
	current.Interests = append([]string(nil), p.Interests...)
	current.AvatarKey = p.AvatarKey
	current.UpdatedAt = now.UTC()
	s.profiles[p.ID] = current

	return cloneProfile(current), nil
}

func (s *Store) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[id]
	if !ok {
		return storage.ErrProfileNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	current.LocationLat = &lat
	current.LocationLon = &lon
	current.UpdatedAt = now.UTC()
	s.profiles[id] = current

	return nil
}

func (s *Store) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]model.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = cloneProfile(p)
		}
	}
	return out, nil
}

// RecordSwipe mirrors the postgres transaction: the swipe row, the
// reciprocal-like check and the match resolution happen under one
// critical section, so two concurrent reciprocal likes still produce
// exactly one match.
func (s *Store) RecordSwipe(ctx context.Context, swiperID, swipedID uuid.UUID, action enums.SwipeAction, now time.Time) (storage.SwipeOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.IsZero() {
		now = time.Now().UTC()
	}

	key := directedKey(swiperID, swipedID)
	if _, exists := s.swipes[key]; exists {
		return storage.SwipeOutcome{}, storage.ErrDuplicateSwipe
	}

	swipe := model.Swipe{
		ID:        uuid.New(),
		SwiperID:  swiperID,
		SwipedID:  swipedID,
		Action:    action,
		CreatedAt: now.UTC(),
	}
	s.swipes[key] = swipe
	outcome := storage.SwipeOutcome{Swipe: &swipe}

	if action != enums.SwipeActionLike {
		return outcome, nil
	}

	reciprocal, ok := s.swipes[directedKey(swipedID, swiperID)]
	if !ok || reciprocal.Action != enums.SwipeActionLike {
		return outcome, nil
	}

	pair := canonicalKey(swiperID, swipedID)
	if existingID, ok := s.matchByPair[pair]; ok {
		existing := s.matches[existingID]
		outcome.Match = &existing
		return outcome, nil
	}

	match := model.Match{
		ID:        uuid.New(),
		UserAID:   pair.a,
		UserBID:   pair.b,
		CreatedAt: now.UTC(),
	}
	s.matches[match.ID] = match
	s.matchByPair[pair] = match.ID
	outcome.Match = &match

	return outcome, nil
}

func (s *Store) ListSwipedIDs(ctx context.Context, swiperID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for key := range s.swipes {
		if key.a == swiperID {
			ids = append(ids, key.b)
		}
	}
	return ids, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, storage.ErrMatchNotFound
	}
	return m, nil
}

func (s *Store) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]storage.MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	matches := make([]model.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if m.HasUser(userID) {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID.String() > matches[j].ID.String()
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	items := make([]storage.MatchSummary, 0, len(matches))
	for _, m := range matches {
		partnerID, _ := m.OtherUserID(userID)
		partner, ok := s.profiles[partnerID]
		if !ok {
			continue
		}

		item := storage.MatchSummary{Match: m, Partner: cloneProfile(partner)}
		msgs := s.messages[m.ID]
		for i := range msgs {
			if msgs[i].SenderID != userID && msgs[i].ReadAt == nil {
				item.UnreadCount++
			}
		}
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			item.LastMessage = &last
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *Store) Insert(ctx context.Context, msg model.Message, now time.Time) (storage.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.IsZero() {
		now = time.Now().UTC()
	}

	if msg.IdempotencyKey != "" {
		for _, existing := range s.messages[msg.MatchID] {
			if existing.IdempotencyKey == msg.IdempotencyKey {
				return storage.SendResult{Message: existing, Replayed: true}, nil
			}
		}
	}

	msg.CreatedAt = now.UTC()
	s.messages[msg.MatchID] = append(s.messages[msg.MatchID], msg)

	return storage.SendResult{Message: msg}, nil
}

func (s *Store) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[matchID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, matchID, readerID uuid.UUID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at.IsZero() {
		at = time.Now().UTC()
	}
	stamp := at.UTC()

	var stamped int64
	msgs := s.messages[matchID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && msgs[i].ReadAt == nil {
			msgs[i].ReadAt = &stamp
			stamped++
		}
	}

	return stamped, nil
}

func (s *Store) Upsert(ctx context.Context, blockerID, blockedID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := directedKey(blockerID, blockedID)
	if _, ok := s.blocks[key]; ok {
		return nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	s.blocks[key] = model.BlockRecord{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: now.UTC(),
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocks, directedKey(blockerID, blockedID))
	return nil
}

func (s *Store) ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.BlockRecord, 0, 4)
	for key, rec := range s.blocks {
		if key.a == blockerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].BlockedID.String() > records[j].BlockedID.String()
	})

	items := make([]model.Profile, 0, len(records))
	for _, rec := range records {
		if p, ok := s.profiles[rec.BlockedID]; ok {
			items = append(items, cloneProfile(p))
		}
	}

	return items, nil
}

func (s *Store) IsBlockedEither(ctx context.Context, a, b uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.blocks[directedKey(a, b)]; ok {
		return true, nil
	}
	if _, ok := s.blocks[directedKey(b, a)]; ok {
		return true, nil
	}
	return false, nil
}

func (s *Store) Create(ctx context.Context, report model.Report, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.IsZero() {
		now = time.Now().UTC()
	}
	report.CreatedAt = now.UTC()
	s.reports = append(s.reports, report)

	return nil
}

func (s *Store) GetSlot(ctx context.Context, id uuid.UUID) (model.AvailabilitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return model.AvailabilitySlot{}, storage.ErrSlotNotFound
	}
	return slot, nil
}

// ListSlotsByUser returns every slot the user owns, soonest date
// first with creation order as the tiebreak.
func (s *Store) ListSlotsByUser(ctx context.Context, userID uuid.UUID) ([]model.AvailabilitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AvailabilitySlot, 0)
	for _, slot := range s.slots {
		if slot.UserID == userID {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) InsertSlot(ctx context.Context, slot model.AvailabilitySlot, now time.Time) (model.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[slot.UserID]; !ok {
		return model.AvailabilitySlot{}, storage.ErrProfileNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	slot.CreatedAt = now.UTC()
	s.slots[slot.ID] = slot

	return slot, nil
}

func (s *Store) UpdateSlot(ctx context.Context, slot model.AvailabilitySlot) (model.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.slots[slot.ID]
	if !ok {
		return model.AvailabilitySlot{}, storage.ErrSlotNotFound
	}

	current.Date = slot.Date
	current.TimeSlot = slot.TimeSlot
	current.TimeDetail = slot.TimeDetail
	current.Type = slot.Type
	current.Title = slot.Title
	current.Description = slot.Description
	current.Location = slot.Location
	current.Area = slot.Area
	current.Status = slot.Status
	s.slots[slot.ID] = current

	return current, nil
}

func (s *Store) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return storage.ErrSlotNotFound
	}
	delete(s.slots, id)
	return nil
}

func (s *Store) ListCandidates(ctx context.Context, q storage.FeedQuery) ([]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.Limit <= 0 {
		q.Limit = 20
	}
	applyDistance := q.Filters.MaxDistanceKM != nil && q.ViewerLat != nil && q.ViewerLon != nil

	candidates := make([]model.Profile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id == q.ViewerID {
			continue
		}
		if _, swiped := s.swipes[directedKey(q.ViewerID, id)]; swiped {
			continue
		}
		if s.blockedEitherLocked(q.ViewerID, id) {
			continue
		}
		if !q.Filters.MatchesLookingFor(p.LookingFor) {
			continue
		}
		if !q.Filters.MatchesSkills(p.Skills) {
			continue
		}
		if applyDistance {
			if !p.HasCoordinates() {
				continue
			}
			dist := rules.HaversineKM(*q.ViewerLat, *q.ViewerLon, *p.LocationLat, *p.LocationLon)
			if dist > *q.Filters.MaxDistanceKM {
				continue
			}
		}
		candidates = append(candidates, cloneProfile(p))
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].ID.String() > candidates[j].ID.String()
	})
	if len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}

	return candidates, nil
}

func (s *Store) blockedEitherLocked(a, b uuid.UUID) bool {
	if _, ok := s.blocks[directedKey(a, b)]; ok {
		return true
	}
	_, ok := s.blocks[directedKey(b, a)]
	return ok
}

func cloneProfile(p model.Profile) model.Profile {
	out := p
	out.Skills = append([]string(nil), p.Skills...)
	out.Interests = append([]string(nil), p.Interests...)
	if p.LocationLat != nil {
		lat := *p.LocationLat
		out.LocationLat = &lat
	}
	if p.LocationLon != nil {
		lon := *p.LocationLon
		out.LocationLon = &lon
	}
	return out
}
