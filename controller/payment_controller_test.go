package controller

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syphaxalili/b2connect-store-sub001/checkout"
	"github.com/syphaxalili/b2connect-store-sub001/gateway"
)

func TestIntentFromMetadata(t *testing.T) {
	userID := uint(7)
	intent, err := intentFromMetadata(gateway.Metadata{
		UserID:      &userID,
		ProductIDs:  []string{"a", "b"},
		Quantities:  []int{2, 1},
		ShippingFee: "5.99",
		ShippingAddress: &gateway.AddressInput{
			FullName: "Jane Doe",
			Line1:    "1 Main St",
			City:     "Springfield",
			Country:  "US",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, intent.UserID)
	assert.Equal(t, uint(7), *intent.UserID)
	assert.Equal(t, []checkout.Line{
		{ProductID: "a", Qty: 2},
		{ProductID: "b", Qty: 1},
	}, intent.Lines)
	assert.True(t, intent.ShippingFee.Equal(decimal.RequireFromString("5.99")))
	require.NotNil(t, intent.Address)
	assert.Equal(t, "Jane Doe", intent.Address.FullName)
	require.NotNil(t, intent.Address.UserID)
	assert.Equal(t, uint(7), *intent.Address.UserID)
}

func TestIntentFromMetadataRejectsMismatchedLines(t *testing.T) {
	_, err := intentFromMetadata(gateway.Metadata{
		ProductIDs: []string{"a", "b"},
		Quantities: []int{2},
	})
	assert.Error(t, err)

	_, err = intentFromMetadata(gateway.Metadata{})
	assert.Error(t, err)
}

func TestIntentFromMetadataBadShippingFee(t *testing.T) {
	_, err := intentFromMetadata(gateway.Metadata{
		ProductIDs:  []string{"a"},
		Quantities:  []int{1},
		ShippingFee: "free",
	})
	assert.Error(t, err)
}
