package services

import (
	"testing"

	"booking-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierRegistry_Resolve(t *testing.T) {
	suppliers := append(testSuppliers(), models.Supplier{
		Slug: "sunset-co",
		Activities: []models.Activity{
			{Slug: "dinner", TimeslotIDs: []int64{777}},
			{Slug: "whales", TimeslotIDs: []int64{888}},
		},
	})
	registry := NewSupplierRegistry(suppliers, "reef-co", "")

	supplier, activity, err := registry.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, "reef-co", supplier.Slug)
	assert.Equal(t, "snorkel", activity.Slug)

	_, activity, err = registry.Resolve("sunset-co", "whales")
	require.NoError(t, err)
	assert.Equal(t, []int64{888}, activity.TimeslotIDs)

	_, _, err = registry.Resolve("sunset-co", "")
	assert.ErrorIs(t, err, ErrUnknownActivity)

	_, _, err = registry.Resolve("lava-co", "")
	assert.ErrorIs(t, err, ErrUnknownSupplier)

	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, "sunset-co", all[1].Slug)
}

func TestSupplierRegistry_Supplier(t *testing.T) {
	registry := NewSupplierRegistry(testSuppliers(), "", "")

	supplier, err := registry.Supplier("")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), supplier.SupplierID)

	_, err = registry.Supplier("lava-co")
	assert.ErrorIs(t, err, ErrUnknownSupplier)
}
