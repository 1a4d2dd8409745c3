package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestForProfile(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		role     string
		district string
		want     Scope
	}{
		{"super admin sees everything", RoleSuperAdministrator, "", All()},
		{"admin sees own district", RoleAdministrator, "eThekwini", District("eThekwini")},
		{"admin without district fails closed", RoleAdministrator, "", None()},
		{"promoter sees own records", RoleHealthPromoter, "eThekwini", Self(userID)},
		{"unknown role sees own records", "Intern", "", Self(userID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForProfile(tt.role, tt.district, userID))
		})
	}
}

func TestForUserDirectoryAdminWithoutDistrictSeesSelf(t *testing.T) {
	userID := uuid.New()
	assert.Equal(t, Self(userID), ForUserDirectory(RoleAdministrator, "", userID))
	assert.Equal(t, District("eThekwini"), ForUserDirectory(RoleAdministrator, "eThekwini", userID))
}

func TestMatches(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.True(t, All().Matches(owner, "anywhere"))
	assert.True(t, District("eThekwini").Matches(other, "eThekwini"))
	assert.False(t, District("eThekwini").Matches(other, "uMgungundlovu"))
	assert.True(t, Self(owner).Matches(owner, ""))
	assert.False(t, Self(owner).Matches(other, ""))
	assert.False(t, None().Matches(owner, "eThekwini"))

	// The zero value must fail closed.
	var zero Scope
	assert.False(t, zero.Matches(owner, "eThekwini"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleHealthPromoter))
	assert.True(t, ValidRole(RoleAdministrator))
	assert.True(t, ValidRole(RoleSuperAdministrator))
	assert.False(t, ValidRole("health promoter"))
	assert.False(t, ValidRole(""))
}
