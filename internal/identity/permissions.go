package identity

import (
	"encoding/json"
	"fmt"
)

// Module names that can appear as permission matrix keys. The matrix itself
// is open-ended; unknown keys are stored but only ever deny-by-absence.
const (
	ModuleProducts   = "products"
	ModuleCategories = "categories"
	ModuleSchedules  = "schedules"
	ModuleSocials    = "socials"
	ModuleLocation   = "location"
	ModuleBranchInfo = "branch_info"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

type ActionSet struct {
	CanView   bool `json:"canView"`
	CanCreate bool `json:"canCreate"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

func (a ActionSet) allows(action Action) bool {
	switch action {
	case ActionView:
		return a.CanView
	case ActionCreate:
		return a.CanCreate
	case ActionEdit:
		return a.CanEdit
	case ActionDelete:
		return a.CanDelete
	}
	return false
}

// PermissionMatrix maps module name to the actions an employee may perform.
// A module absent from the matrix denies every action for it.
type PermissionMatrix map[string]ActionSet

// Allows is fail-closed: missing module or unknown action means deny.
func (m PermissionMatrix) Allows(module string, action Action) bool {
	if m == nil {
		return false
	}
	set, ok := m[module]
	if !ok {
		return false
	}
	return set.allows(action)
}

// ParseMatrix deserializes the permission blob stored on the user row. It is
// called once when the Identity is built, never per gate check.
func ParseMatrix(blob []byte) (PermissionMatrix, error) {
	if len(blob) == 0 {
		return PermissionMatrix{}, nil
	}
	var m PermissionMatrix
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, fmt.Errorf("malformed permission matrix: %w", err)
	}
	return m, nil
}

func (m PermissionMatrix) Marshal() ([]byte, error) {
	if m == nil {
		m = PermissionMatrix{}
	}
	return json.Marshal(m)
}
