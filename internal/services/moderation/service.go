package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

const (
	maxDescriptionLength = 2000
	avatarURLTTL         = 5 * time.Minute
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// TooManyReportsError signals the report window cap; RetryAfter is
// the remaining window.
type TooManyReportsError struct {
	RetryAfter time.Duration
}

func (e TooManyReportsError) Error() string {
	return fmt.Sprintf("too many reports, retry after %s", e.RetryAfter)
}

type BlockStore interface {
	Upsert(ctx context.Context, blockerID, blockedID uuid.UUID, now time.Time) error
	Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error
	ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]model.Profile, error)
}

type ReportStore interface {
	Create(ctx context.Context, report model.Report, now time.Time) error
}

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
}

type RateLimiter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type AvatarSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	ReportLimit  int
	ReportWindow time.Duration
}

type Service struct {
	blocks      BlockStore
	reports     ReportStore
	profiles    ProfileStore
	rateLimiter RateLimiter
	rateKey     func(uuid.UUID) string
	signer      AvatarSigner
	cfg         Config
	now         func() time.Time
}

type Dependencies struct {
	Blocks      BlockStore
	Reports     ReportStore
	Profiles    ProfileStore
	RateLimiter RateLimiter
	RateKey     func(uuid.UUID) string
	Signer      AvatarSigner
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ReportLimit <= 0 {
		cfg.ReportLimit = 3
	}
	if cfg.ReportWindow <= 0 {
		cfg.ReportWindow = 10 * time.Minute
	}

	return &Service{
		blocks:      deps.Blocks,
		reports:     deps.Reports,
		profiles:    deps.Profiles,
		rateLimiter: deps.RateLimiter,
		rateKey:     deps.RateKey,
		signer:      deps.Signer,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *Service) targetExists(ctx context.Context, targetID uuid.UUID) error {
	if s.profiles == nil {
		return nil
	}
	if _, err := s.profiles.Get(ctx, targetID); err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load target profile: %w", err)
	}
	return nil
}

// Block hides the target from the viewer's feed and match list.
// Blocking twice is a no-op; existing matches and messages stay in
// place.
func (s *Service) Block(ctx context.Context, blockerID, targetID uuid.UUID) error {
	if blockerID == uuid.Nil || targetID == uuid.Nil || blockerID == targetID {
		return ErrValidation
	}
	if s.blocks == nil {
		return fmt.Errorf("moderation dependencies are not configured")
	}

	if err := s.targetExists(ctx, targetID); err != nil {
		return err
	}

	if err := s.blocks.Upsert(ctx, blockerID, targetID, s.now().UTC()); err != nil {
		return fmt.Errorf("store block: %w", err)
	}

	return nil
}

// Unblock removes the block. Unblocking an unblocked user is a no-op.
func (s *Service) Unblock(ctx context.Context, blockerID, targetID uuid.UUID) error {
	if blockerID == uuid.Nil || targetID == uuid.Nil || blockerID == targetID {
		return ErrValidation
	}
	if s.blocks == nil {
		return fmt.Errorf("moderation dependencies are not configured")
	}

	if err := s.blocks.Delete(ctx, blockerID, targetID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	return nil
}

// Report files an append-only report. The per-reporter window cap
// fails closed: if the limiter is unreachable the report is rejected
// rather than waved through.
func (s *Service) Report(ctx context.Context, reporterID, targetID uuid.UUID, reason enums.ReportReason, description string) error {
	if reporterID == uuid.Nil || targetID == uuid.Nil || reporterID == targetID {
		return ErrValidation
	}
	if _, ok := enums.ParseReportReason(reason.String()); !ok {
		return ErrValidation
	}
	description = strings.TrimSpace(description)
	if len([]rune(description)) > maxDescriptionLength {
		return ErrValidation
	}
	if s.reports == nil {
		return fmt.Errorf("moderation dependencies are not configured")
	}

	if err := s.targetExists(ctx, targetID); err != nil {
		return err
	}

	if s.rateLimiter != nil && s.rateKey != nil {
		count, ttl, err := s.rateLimiter.IncrementWindow(ctx, s.rateKey(reporterID), s.cfg.ReportWindow)
		if err != nil {
			return fmt.Errorf("apply report rate limiter: %w", err)
		}
		if count > int64(s.cfg.ReportLimit) {
			return TooManyReportsError{RetryAfter: ttl}
		}
	}

	report := model.Report{
		ID:             uuid.New(),
		ReporterID:     reporterID,
		ReportedUserID: targetID,
		Reason:         reason,
		Description:    description,
	}
	if err := s.reports.Create(ctx, report, s.now().UTC()); err != nil {
		return fmt.Errorf("store report: %w", err)
	}

	return nil
}

// ListBlocked returns the viewer's block list for the settings page.
func (s *Service) ListBlocked(ctx context.Context, viewerID uuid.UUID) ([]model.Profile, error) {
	if viewerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.blocks == nil {
		return nil, fmt.Errorf("moderation dependencies are not configured")
	}

	blocked, err := s.blocks.ListBlocked(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}

	if s.signer != nil {
		for i := range blocked {
			if blocked[i].AvatarKey == "" {
				continue
			}
			if signed, err := s.signer.PresignGet(ctx, blocked[i].AvatarKey, avatarURLTTL); err == nil {
				blocked[i].AvatarURL = &signed
			}
		}
	}

	return blocked, nil
}
