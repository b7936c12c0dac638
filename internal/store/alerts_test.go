package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

func TestStore_CreateAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateAlert(ctx, "aapl", AlertPriceAbove, 200.0)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "AAPL", a.Symbol)
	assert.Equal(t, AlertPriceAbove, a.Kind)
	assert.True(t, a.Active)
	assert.Nil(t, a.TriggeredAt)

	got, err := s.GetAlert(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, 200.0, got.Threshold)
}

func TestStore_CreateAlert_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateAlert(ctx, "", AlertPriceAbove, 200.0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = s.CreateAlert(ctx, "AAPL", "price_sideways", 200.0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = s.CreateAlert(ctx, "AAPL", AlertPriceAbove, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_MarkTriggered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateAlert(ctx, "AAPL", AlertRSIBelow, 30)
	require.NoError(t, err)

	at := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkTriggered(ctx, a.ID, at))

	got, err := s.GetAlert(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	require.NotNil(t, got.TriggeredAt)
	assert.True(t, got.TriggeredAt.Equal(at))
}

func TestStore_ListAlerts_ActiveOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateAlert(ctx, "AAPL", AlertPriceAbove, 200)
	require.NoError(t, err)
	_, err = s.CreateAlert(ctx, "MSFT", AlertPriceBelow, 350)
	require.NoError(t, err)
	require.NoError(t, s.MarkTriggered(ctx, first.ID, time.Now().UTC()))

	all, err := s.ListAlerts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := s.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "MSFT", active[0].Symbol)
}

func TestStore_DeleteAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateAlert(ctx, "AAPL", AlertSMACross, 50)
	require.NoError(t, err)
	require.NoError(t, s.DeleteAlert(ctx, a.ID))

	_, err = s.GetAlert(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = s.DeleteAlert(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
