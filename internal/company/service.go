package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/assetstore"
	"github.com/frahmantamala/company-management/internal/core/events"
)

// Repository is the data access contract for companies. Create and the
// rename path of Mutate translate storage unique violations on the
// normalized name into internal.ErrCompanyNameUnavailable; the storage
// constraint, not any pre-check, is the authority on name collisions.
type Repository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id int64) (*Company, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*Company, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	NormalizedNameExists(ctx context.Context, normalizedName string) (bool, error)

	// Mutate runs fn against the row locked FOR UPDATE inside a single
	// transaction. fn returns whether anything changed; unchanged rows
	// are returned without a write. An fn error rolls everything back.
	Mutate(ctx context.Context, id int64, fn func(c *Company) (changed bool, err error)) (*Company, error)

	// Remove locks the row, runs fn for precondition checks and side
	// effects, then hard-deletes it in the same transaction.
	Remove(ctx context.Context, id int64, fn func(c *Company) error) error
}

// AssetStore is the external collaborator holding company logos.
type AssetStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// AssetCleaner schedules fire-and-log deletion of replaced assets.
type AssetCleaner interface {
	Enqueue(key, reason string)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service is the transactional state machine for a company's life:
// active -> archived -> active, and active/archived -> deleted (terminal).
// Every mutating operation serializes on the company row lock and
// re-validates preconditions after acquiring it, so the loser of a race
// observes the winner's committed state.
type Service struct {
	repo    Repository
	assets  AssetStore
	cleaner AssetCleaner
	bus     Publisher
	logger  *slog.Logger
}

func NewService(repo Repository, assets AssetStore, cleaner AssetCleaner, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		assets:  assets,
		cleaner: cleaner,
		bus:     bus,
		logger:  logger,
	}
}

// Create validates input, applies the soft per-owner ceiling, and inserts.
// Two concurrent creates with the same normalized name are arbitrated only
// by the unique index: exactly one commits, the other gets NameUnavailable.
func (s *Service) Create(ctx context.Context, ownerID int64, dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("company validation failed", "error", err, "owner_id", ownerID)
		return nil, err
	}

	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to count companies for owner", "error", err, "owner_id", ownerID)
		return nil, err
	}
	if count >= MaxCompaniesPerOwner {
		s.logger.Warn("company limit reached", "owner_id", ownerID, "count", count)
		return nil, internal.ErrCompanyLimitReached
	}

	c := NewCompany(ownerID, dto)
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, internal.ErrCompanyNameUnavailable) {
			s.logger.Warn("company name taken", "name", c.NormalizedName, "owner_id", ownerID)
		} else {
			s.logger.Error("failed to create company", "error", err, "owner_id", ownerID)
		}
		return nil, err
	}

	s.logger.Info("company created", "company_id", c.ID, "owner_id", ownerID, "name", c.Name)
	s.publish(ctx, events.CompanyCreated, c.ID, ownerID)
	return c, nil
}

// Get returns the company if it belongs to ownerID. Read-only, no locks.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (*Company, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		s.logger.Warn("company access denied", "company_id", id, "owner_id", c.OwnerID, "caller_id", ownerID)
		return nil, internal.ErrNotOwner
	}
	return c, nil
}

// List returns every company owned by ownerID, archived ones included.
func (s *Service) List(ctx context.Context, ownerID int64) ([]*Company, error) {
	companies, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list companies", "error", err, "owner_id", ownerID)
		return nil, err
	}
	return companies, nil
}

// Update applies a minimal diff under the row lock. If nothing changed the
// current row comes back without a write. Logo semantics: binary upload is
// stored and referenced, a non-empty ref string is stored verbatim, remove
// deletes the stored asset and clears the reference.
func (s *Service) Update(ctx context.Context, id, ownerID int64, dto UpdateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("company patch validation failed", "error", err, "company_id", id)
		return nil, err
	}

	var (
		replacedLogo string
		mutated      bool
	)

	updated, err := s.repo.Mutate(ctx, id, func(c *Company) (bool, error) {
		if c.OwnerID != ownerID {
			return false, internal.ErrNotOwner
		}

		changed := false

		if dto.Name != nil {
			if display := DisplayName(*dto.Name); display != c.Name {
				c.Name = display
				c.NormalizedName = NormalizeName(*dto.Name)
				changed = true
			}
		}

		if dto.Description != nil && *dto.Description != c.Description {
			c.Description = *dto.Description
			changed = true
		}

		if dto.Logo != nil {
			logoChanged, err := s.applyLogoPatch(ctx, c, dto.Logo, &replacedLogo)
			if err != nil {
				return false, err
			}
			changed = changed || logoChanged
		}

		mutated = changed
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if !mutated {
		return updated, nil
	}

	// Replaced assets are cleaned up only after the rename of the
	// reference committed; failures leave a logged orphan, nothing else.
	if replacedLogo != "" {
		s.cleaner.Enqueue(replacedLogo, "logo replaced")
	}

	s.logger.Info("company updated", "company_id", id, "owner_id", ownerID)
	s.publish(ctx, events.CompanyUpdated, id, ownerID)
	return updated, nil
}

func (s *Service) applyLogoPatch(ctx context.Context, c *Company, patch *LogoPatch, replaced *string) (bool, error) {
	switch {
	case len(patch.Upload) > 0:
		contentType := patch.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := fmt.Sprintf("companies/%d/logo-%s", c.ID, uuid.NewString())
		ref, err := s.assets.Put(ctx, key, patch.Upload, contentType)
		if err != nil {
			s.logger.Error("logo upload failed", "error", err, "company_id", c.ID)
			return false, internal.NewExternalError("failed to store logo", internal.ErrCodeAssetStore, err)
		}
		if c.LogoRef != nil {
			*replaced = *c.LogoRef
		}
		c.LogoRef = &ref
		return true, nil

	case patch.Ref != "":
		if c.LogoRef != nil && *c.LogoRef == patch.Ref {
			return false, nil
		}
		if c.LogoRef != nil {
			*replaced = *c.LogoRef
		}
		ref := patch.Ref
		c.LogoRef = &ref
		return true, nil

	case patch.Remove:
		if c.LogoRef == nil {
			return false, nil
		}
		if err := s.deleteAsset(ctx, *c.LogoRef); err != nil {
			return false, err
		}
		c.LogoRef = nil
		return true, nil
	}

	return false, nil
}

// Archive freezes the company. Idempotence is rejected, not silently
// absorbed: a second archive yields AlreadyArchived.
func (s *Service) Archive(ctx context.Context, id, ownerID int64) (*Company, error) {
	archived, err := s.repo.Mutate(ctx, id, func(c *Company) (bool, error) {
		if c.OwnerID != ownerID {
			return false, internal.ErrNotOwner
		}
		if c.IsArchived() {
			return false, internal.ErrCompanyAlreadyArchived
		}
		c.Archive(time.Now())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company archived", "company_id", id, "owner_id", ownerID)
	s.publish(ctx, events.CompanyArchived, id, ownerID)
	return archived, nil
}

// Reactivate clears the archive marker; only valid from archived.
func (s *Service) Reactivate(ctx context.Context, id, ownerID int64) (*Company, error) {
	reactivated, err := s.repo.Mutate(ctx, id, func(c *Company) (bool, error) {
		if c.OwnerID != ownerID {
			return false, internal.ErrNotOwner
		}
		if !c.IsArchived() {
			return false, internal.ErrCompanyNotArchived
		}
		c.Reactivate()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company reactivated", "company_id", id, "owner_id", ownerID)
	s.publish(ctx, events.CompanyReactivated, id, ownerID)
	return reactivated, nil
}

// Delete removes the company for good, from active or archived alike. Logo
// cleanup happens before the row goes: a missing asset is logged and
// tolerated, any other asset failure aborts the whole transaction.
//
// TODO: decide whether delete should be refused while dependent branches
// exist; currently it is unconditional.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) error {
	err := s.repo.Remove(ctx, id, func(c *Company) error {
		if c.OwnerID != ownerID {
			return internal.ErrNotOwner
		}
		if c.LogoRef != nil {
			if err := s.deleteAsset(ctx, *c.LogoRef); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("company deleted", "company_id", id, "owner_id", ownerID)
	s.publish(ctx, events.CompanyDeleted, id, ownerID)
	return nil
}

func (s *Service) deleteAsset(ctx context.Context, ref string) error {
	err := s.assets.Delete(ctx, ref)
	if err == nil {
		return nil
	}
	if errors.Is(err, assetstore.ErrNotFound) {
		s.logger.Warn("logo asset already gone during cleanup", "logo_ref", ref)
		return nil
	}
	s.logger.Error("logo asset cleanup failed", "error", err, "logo_ref", ref)
	return internal.NewExternalError("failed to delete logo", internal.ErrCodeAssetStore, err)
}

// CheckNameAvailability is a UX hint using the same normalization as the
// unique index. It is racy by nature: a create must still go through the
// storage-level arbitration regardless of this answer.
func (s *Service) CheckNameAvailability(ctx context.Context, rawName string) (bool, error) {
	normalized := NormalizeName(rawName)
	if normalized == "" {
		return false, internal.NewValidationFieldError("name", "name is required", internal.ErrCodeInvalidName)
	}
	if len(normalized) > MaxNameLength {
		return false, nil
	}

	exists, err := s.repo.NormalizedNameExists(ctx, normalized)
	if err != nil {
		s.logger.Error("name availability check failed", "error", err, "name", normalized)
		return false, err
	}
	return !exists, nil
}

func (s *Service) publish(ctx context.Context, eventType string, companyID, actorID int64) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, events.NewCompanyEvent(eventType, companyID, actorID)); err != nil {
		s.logger.Error("failed to publish company event", "error", err, "event_type", eventType, "company_id", companyID)
	}
}
