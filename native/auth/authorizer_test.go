package auth

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type mockAuthState struct {
	grants map[string]bool
}

func newMockAuthState() *mockAuthState {
	return &mockAuthState{grants: make(map[string]bool)}
}

func (m *mockAuthState) key(permission string, addr common.Address) string {
	return permission + "/" + addr.Hex()
}

func (m *mockAuthState) AuthHasPermission(permission string, addr common.Address) (bool, error) {
	return m.grants[m.key(permission, addr)], nil
}

func (m *mockAuthState) AuthSetPermission(permission string, addr common.Address, granted bool) error {
	m.grants[m.key(permission, addr)] = granted
	return nil
}

func TestGrantRevokeRequire(t *testing.T) {
	authorizer := NewAuthorizer()
	authorizer.SetState(newMockAuthState())
	operator := common.BytesToAddress([]byte("operator"))

	require.ErrorIs(t, authorizer.Require(operator, PermissionEmissionsAdmin), ErrUnauthorized)

	require.NoError(t, authorizer.Grant(PermissionEmissionsAdmin, operator))
	require.NoError(t, authorizer.Require(operator, PermissionEmissionsAdmin))

	// Permissions are independent sets.
	require.ErrorIs(t, authorizer.Require(operator, PermissionGovernorAdmin), ErrUnauthorized)

	require.NoError(t, authorizer.Revoke(PermissionEmissionsAdmin, operator))
	require.ErrorIs(t, authorizer.Require(operator, PermissionEmissionsAdmin), ErrUnauthorized)
}

func TestUnknownPermissionRejected(t *testing.T) {
	authorizer := NewAuthorizer()
	authorizer.SetState(newMockAuthState())
	operator := common.BytesToAddress([]byte("operator"))

	require.ErrorIs(t, authorizer.Grant(Permission("bogus"), operator), ErrUnknownPermission)
	_, err := authorizer.Has(Permission("bogus"), operator)
	require.ErrorIs(t, err, ErrUnknownPermission)
}
