package service_test

import (
	"testing"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/config"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 24,
	}
}

func TestGuestService_IssueAndValidate(t *testing.T) {
	guestService := service.NewGuestService(testConfig())

	guest, err := guestService.Issue("weekend golfer")
	require.NoError(t, err)
	assert.Equal(t, "weekend golfer", guest.DisplayName)
	assert.NotEmpty(t, guest.Token)

	id, name, err := guestService.Validate(guest.Token)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, id)
	assert.Equal(t, "weekend golfer", name)
}

func TestGuestService_IssueRequiresDisplayName(t *testing.T) {
	guestService := service.NewGuestService(testConfig())

	_, err := guestService.Issue("")
	assert.Error(t, err)
}

func TestGuestService_ValidateRejectsBadTokens(t *testing.T) {
	guestService := service.NewGuestService(testConfig())

	_, _, err := guestService.Validate("not-a-token")
	assert.Error(t, err)

	// Token signed with a different secret must not validate.
	other := service.NewGuestService(&config.Config{JWTSecret: "other-secret", JWTExpirationHours: 24})
	guest, err := other.Issue("impostor")
	require.NoError(t, err)

	_, _, err = guestService.Validate(guest.Token)
	assert.Error(t, err)
}
