package auth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Permission names one privileged capability. Each permission is an
// independent membership set rather than a role hierarchy: granting one never
// implies another.
type Permission string

const (
	// PermissionEmissionsAdmin bootstraps and distributes emission cycles.
	PermissionEmissionsAdmin Permission = "emissions.admin"
	// PermissionRoundAdmin starts allocation rounds outside the scheduler.
	PermissionRoundAdmin Permission = "allocation.round_admin"
	// PermissionGovernorAdmin updates quorum numerators and toggles
	// quadratic modes.
	PermissionGovernorAdmin Permission = "governance.admin"
	// PermissionAppAdmin registers apps and edits eligibility.
	PermissionAppAdmin Permission = "apps.admin"
	// PermissionAttestor issues and revokes personhood attestations.
	PermissionAttestor Permission = "identity.attestor"
	// PermissionTreasury moves unallocated and treasury funds.
	PermissionTreasury Permission = "treasury.operator"
)

var knownPermissions = map[Permission]struct{}{
	PermissionEmissionsAdmin: {},
	PermissionRoundAdmin:     {},
	PermissionGovernorAdmin:  {},
	PermissionAppAdmin:       {},
	PermissionAttestor:       {},
	PermissionTreasury:       {},
}

// Valid reports whether the permission is one of the defined sets.
func (p Permission) Valid() bool {
	_, ok := knownPermissions[p]
	return ok
}

// AuthorizerState is the persistence surface for permission membership.
type AuthorizerState interface {
	AuthHasPermission(permission string, addr common.Address) (bool, error)
	AuthSetPermission(permission string, addr common.Address, granted bool) error
}

// Authorizer answers whether a caller may invoke a privileged operation.
// Mutating engine entry points consult it at the node boundary.
type Authorizer struct {
	state AuthorizerState
}

// NewAuthorizer constructs an authorizer without a backend.
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// SetState wires the persistence backend.
func (a *Authorizer) SetState(state AuthorizerState) { a.state = state }

// Grant adds the address to the permission set.
func (a *Authorizer) Grant(permission Permission, addr common.Address) error {
	if a == nil || a.state == nil {
		return ErrStateNotConfigured
	}
	if !permission.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, permission)
	}
	return a.state.AuthSetPermission(string(permission), addr, true)
}

// Revoke removes the address from the permission set.
func (a *Authorizer) Revoke(permission Permission, addr common.Address) error {
	if a == nil || a.state == nil {
		return ErrStateNotConfigured
	}
	if !permission.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, permission)
	}
	return a.state.AuthSetPermission(string(permission), addr, false)
}

// Has reports set membership.
func (a *Authorizer) Has(permission Permission, addr common.Address) (bool, error) {
	if a == nil || a.state == nil {
		return false, ErrStateNotConfigured
	}
	if !permission.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownPermission, permission)
	}
	return a.state.AuthHasPermission(string(permission), addr)
}

// Require returns ErrUnauthorized unless the caller holds the permission.
func (a *Authorizer) Require(caller common.Address, permission Permission) error {
	granted, err := a.Has(permission, caller)
	if err != nil {
		return err
	}
	if !granted {
		return fmt.Errorf("%w: %s needs %s", ErrUnauthorized, caller.Hex(), permission)
	}
	return nil
}
