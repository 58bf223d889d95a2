package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/testutil"
)

func TestGetSettings_DefaultsForNewOwner(t *testing.T) {
	repo := testutil.NewMockSettingsRepository()
	svc := NewSettingsService(repo)
	owner := uuid.New()

	settings, err := svc.GetSettings(owner)
	require.NoError(t, err)
	assert.True(t, settings.InitialMonthlyBalance.Equal(decimal.NewFromInt(domain.DefaultInitialBalance)))
	assert.Equal(t, int32(domain.DefaultReferenceDay), settings.ReferenceDay)
}

func TestUpdateSettings(t *testing.T) {
	repo := testutil.NewMockSettingsRepository()
	svc := NewSettingsService(repo)
	owner := uuid.New()

	updated, err := svc.UpdateSettings(owner, UpdateSettingsInput{
		InitialMonthlyBalance: decimal.NewFromInt(6200),
		ReferenceDay:          1,
	})
	require.NoError(t, err)
	assert.True(t, updated.InitialMonthlyBalance.Equal(decimal.NewFromInt(6200)))
	assert.Equal(t, int32(1), updated.ReferenceDay)

	// Stored values come back on the next read
	settings, err := svc.GetSettings(owner)
	require.NoError(t, err)
	assert.True(t, settings.InitialMonthlyBalance.Equal(decimal.NewFromInt(6200)))
}

func TestUpdateSettings_Validation(t *testing.T) {
	repo := testutil.NewMockSettingsRepository()
	svc := NewSettingsService(repo)
	owner := uuid.New()

	_, err := svc.UpdateSettings(owner, UpdateSettingsInput{
		InitialMonthlyBalance: decimal.NewFromInt(-1),
		ReferenceDay:          10,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.UpdateSettings(owner, UpdateSettingsInput{
		InitialMonthlyBalance: decimal.NewFromInt(5500),
		ReferenceDay:          0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReferenceDay)

	_, err = svc.UpdateSettings(owner, UpdateSettingsInput{
		InitialMonthlyBalance: decimal.NewFromInt(5500),
		ReferenceDay:          32,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReferenceDay)
}
