package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusPaymentConfirmed, true},
		{StatusPaymentConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		{StatusPending, StatusProcessing, false},
		{StatusPending, StatusShipped, false},
		{StatusPaymentConfirmed, StatusPaymentConfirmed, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplyStatusStampsEntryTimestampsOnce(t *testing.T) {
	now := time.Now()
	order := &Order{Status: StatusPending}

	require.NoError(t, order.ApplyStatus(StatusPaymentConfirmed, now))
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, now, *order.PaidAt)
	assert.True(t, order.Paid())

	// re-entering PAYMENT_CONFIRMED is impossible
	err := order.ApplyStatus(StatusPaymentConfirmed, now.Add(time.Hour))
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, now, *order.PaidAt)

	require.NoError(t, order.ApplyStatus(StatusProcessing, now))
	require.NoError(t, order.ApplyStatus(StatusShipped, now))
	require.NotNil(t, order.ShippedAt)
	require.NoError(t, order.ApplyStatus(StatusDelivered, now))
	require.NotNil(t, order.DeliveredAt)

	err = order.ApplyStatus(StatusCancelled, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, order.CancelledAt)
}

func TestApplyStatusCancellation(t *testing.T) {
	now := time.Now()
	order := &Order{Status: StatusPending}
	require.NoError(t, order.ApplyStatus(StatusCancelled, now))
	require.NotNil(t, order.CancelledAt)
	assert.False(t, order.Paid())
}

func TestApplyStatusRejectsUnknownState(t *testing.T) {
	order := &Order{Status: StatusPending}
	err := order.ApplyStatus("ON_HOLD", time.Now())
	require.ErrorIs(t, err, ErrInvalidStatus)
}
