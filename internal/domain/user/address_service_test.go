// internal/domain/user/address_service_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultFlagsExactlyOneDefault(t *testing.T) {
	addresses := []Address{
		{ID: 1, IsDefault: true},
		{ID: 2, IsDefault: false},
		{ID: 3, IsDefault: false},
	}

	flagged := ApplyDefaultFlags(addresses, 3)

	defaults := 0
	for _, addr := range flagged {
		if addr.IsDefault {
			defaults++
			assert.Equal(t, uint(3), addr.ID)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one address stays default")
}

func TestApplyDefaultFlagsRepairsMultipleDefaults(t *testing.T) {
	// Earlier writes left two defaults behind. A new set-default call
	// rewrites every row, so the duplicate is cleaned up.
	addresses := []Address{
		{ID: 1, IsDefault: true},
		{ID: 2, IsDefault: true},
		{ID: 3, IsDefault: false},
	}

	flagged := ApplyDefaultFlags(addresses, 1)

	require.Len(t, flagged, 3)
	assert.True(t, flagged[0].IsDefault)
	assert.False(t, flagged[1].IsDefault)
	assert.False(t, flagged[2].IsDefault)
}

func TestApplyDefaultFlagsDoesNotMutateInput(t *testing.T) {
	addresses := []Address{{ID: 1, IsDefault: true}, {ID: 2}}

	_ = ApplyDefaultFlags(addresses, 2)

	assert.True(t, addresses[0].IsDefault)
	assert.False(t, addresses[1].IsDefault)
}

func TestValidateForCheckout(t *testing.T) {
	complete := &Address{
		Name:    "Jordan Blake",
		Street:  "1 Rodeo Drive",
		City:    "Beverly Hills",
		State:   "CA",
		Zip:     "90210",
		Country: "United States",
	}
	assert.NoError(t, ValidateForCheckout(complete))

	missing := *complete
	missing.Zip = ""
	assert.Error(t, ValidateForCheckout(&missing))

	assert.Error(t, ValidateForCheckout(nil))
}

func TestValidateForCheckoutRequiresStateForUS(t *testing.T) {
	addr := &Address{
		Name:    "Jordan Blake",
		Street:  "1 Rodeo Drive",
		City:    "Beverly Hills",
		Zip:     "90210",
		Country: "United States",
	}
	assert.Error(t, ValidateForCheckout(addr))

	// Other countries do not need a state.
	addr.Country = "France"
	addr.City = "Paris"
	addr.Zip = "75001"
	assert.NoError(t, ValidateForCheckout(addr))
}
