package wifi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntitlements(t *testing.T) {
	e, err := ParseEntitlements([]string{"scan", "Associate"})
	require.NoError(t, err)

	assert.True(t, e.Has(EntitlementScan))
	assert.True(t, e.Has(EntitlementAssociate))
	assert.False(t, e.Has(EntitlementIBSS))

	e, err = ParseEntitlements([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, EntitlementsAll, e)

	_, err = ParseEntitlements([]string{"fly"})
	assert.Equal(t, InvalidParameterError, CodeOf(err))
}

func TestEventTypeNames(t *testing.T) {
	for _, et := range EventTypes {
		assert.True(t, et.Valid())
		assert.Equal(t, et, ParseEventType(et.String()))
	}

	assert.False(t, EventTypeNone.Valid())
	assert.False(t, EventTypeUnknown.Valid())
	assert.Equal(t, EventTypeUnknown, ParseEventType("weather"))
}

func TestSecurityNames(t *testing.T) {
	for s := SecurityNone; s <= SecurityEnterprise; s++ {
		assert.Equal(t, s, ParseSecurity(s.String()))
	}

	assert.Equal(t, SecurityUnknown, ParseSecurity("rot13"))
}

func TestCipherKeyFlagsValid(t *testing.T) {
	assert.True(t, CipherKeyFlagsNone.Valid())
	assert.True(t, (CipherKeyFlagsUnicast | CipherKeyFlagsTx | CipherKeyFlagsRx).Valid())
	assert.False(t, CipherKeyFlags(1).Valid())
	assert.False(t, CipherKeyFlags(1<<5).Valid())
}
