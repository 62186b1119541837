package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farelytics/internal/settings"
	"farelytics/internal/testsupport"
)

func TestGetSetRoundtrip(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	value, err := settings.Get(db, "retention_days")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, settings.Set(db, "retention_days", "90"))
	require.NoError(t, settings.Set(db, "retention_days", "30"))

	value, err = settings.Get(db, "retention_days")
	require.NoError(t, err)
	assert.Equal(t, "30", value)
}

func TestEnsureDashboardAPIKey(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	key, err := settings.EnsureDashboardAPIKey(db)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	hash, err := settings.GetDashboardAPIKeyHash(db)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, key, hash)

	// Once generated, the plaintext is never handed out again.
	again, err := settings.EnsureDashboardAPIKey(db)
	require.NoError(t, err)
	assert.Empty(t, again)

	ok, err := settings.VerifyDashboardAPIKey(db, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = settings.VerifyDashboardAPIKey(db, "wrong-key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBeforeKeyExists(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	ok, err := settings.VerifyDashboardAPIKey(db, "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}
