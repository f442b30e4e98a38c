package company

import (
	errors "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/core/common/validation"
)

// CreateCompanyDTO is the request payload for creating a company.
type CreateCompanyDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (dto CreateCompanyDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required()
	v.Field("description", dto.Description).MaxLength(MaxDescriptionLength)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if len(NormalizeName(dto.Name)) > MaxNameLength {
		return errors.NewValidationFieldError("name", "name must be at most 255 characters", errors.ErrCodeInvalidName)
	}
	return nil
}

// LogoPatch carries the tri-state logo semantics of an update:
//   - Upload set: the binary payload is stored and its reference saved
//   - Ref set (non-empty): the string is saved verbatim as the reference
//   - Remove: the stored asset is deleted and the reference cleared
//
// Exactly one of the three must be used.
type LogoPatch struct {
	Upload      []byte `json:"upload,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Ref         string `json:"ref,omitempty"`
	Remove      bool   `json:"remove,omitempty"`
}

func (p *LogoPatch) Validate() error {
	set := 0
	if len(p.Upload) > 0 {
		set++
	}
	if p.Ref != "" {
		set++
	}
	if p.Remove {
		set++
	}
	if set != 1 {
		return errors.NewValidationError("logo patch must set exactly one of upload, ref or remove", errors.ErrCodeInvalidLogoPatch)
	}
	return nil
}

// UpdateCompanyDTO is a partial patch; nil fields are left untouched.
type UpdateCompanyDTO struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Logo        *LogoPatch `json:"logo,omitempty"`
}

func (dto UpdateCompanyDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required()
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).MaxLength(MaxDescriptionLength)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if dto.Name != nil && len(NormalizeName(*dto.Name)) > MaxNameLength {
		return errors.NewValidationFieldError("name", "name must be at most 255 characters", errors.ErrCodeInvalidName)
	}
	if dto.Logo != nil {
		return dto.Logo.Validate()
	}
	return nil
}

// NameAvailabilityResponse is a UX hint only; create-time uniqueness is
// still arbitrated by the storage layer.
type NameAvailabilityResponse struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}
