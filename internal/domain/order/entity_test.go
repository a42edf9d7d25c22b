package order

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNumber(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "ORD-20250314-00042", NewOrderNumber(at, 42))
	assert.Equal(t, "ORD-20250314-00001", NewOrderNumber(at, 1))
}

func TestCanBeCancelled(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusProcessing, true},
		{StatusShipped, false},
		{StatusDelivered, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		o := Order{Status: tt.status}
		assert.Equal(t, tt.want, o.CanBeCancelled(), "status %s", tt.status)
	}
}

func TestReceiptIDIsUnique(t *testing.T) {
	// Finalization deduplicates captures by looking orders up through their
	// receipt id, which only works while the column stays uniquely indexed.
	field, ok := reflect.TypeOf(Order{}).FieldByName("PaymentReceiptID")
	require.True(t, ok)
	assert.True(t, strings.Contains(field.Tag.Get("gorm"), "uniqueIndex"))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusProcessing))
	assert.True(t, ValidStatus(StatusShipped))
	assert.False(t, ValidStatus(Status("refunded")))
	assert.False(t, ValidStatus(Status("")))
}
