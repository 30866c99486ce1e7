package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityStatus(t *testing.T) {
	assert.Equal(t, "Disponible", StatusAvailable.DisplayName())
	assert.Equal(t, "Reservado", StatusReserved.DisplayName())
	assert.Equal(t, "Vendido", StatusSold.DisplayName())
	assert.Equal(t, "No Disponible", StatusNotAvailable.DisplayName())
	assert.Equal(t, "No Disponible", EntityStatus("bogus").DisplayName())

	assert.True(t, StatusAvailable.Valid())
	assert.False(t, EntityStatus("bogus").Valid())
	assert.False(t, EntityStatus("").Valid())
}

func TestLayerRegionID(t *testing.T) {
	l := &Layer{Slug: "lote-1"}
	assert.Equal(t, "lote-1", l.RegionID())

	l.SVGElementID = "region-lote-1"
	assert.Equal(t, "region-lote-1", l.RegionID())
}

func TestMediaForLayer(t *testing.T) {
	l1, l2 := "l1", "l2"

	projectLevel := &Media{}
	lotLevel := &Media{LayerID: &l1}

	assert.True(t, projectLevel.ForLayer(nil))
	assert.False(t, projectLevel.ForLayer(&l1))
	assert.True(t, lotLevel.ForLayer(&l1))
	assert.False(t, lotLevel.ForLayer(&l2))
	assert.False(t, lotLevel.ForLayer(nil))
}

func TestDecodeProperties(t *testing.T) {
	t.Run("subdivision lot", func(t *testing.T) {
		raw := json.RawMessage(`{"area": 450, "price": 32000, "is_corner": true, "features": ["esquina", "arbolado"]}`)
		props, err := DecodeProperties(ProjectSubdivision, raw)
		require.NoError(t, err)

		lot, ok := props.(SubdivisionLotProperties)
		require.True(t, ok)
		assert.Equal(t, ProjectSubdivision, lot.Kind())
		assert.Equal(t, 450.0, lot.Area)
		assert.True(t, lot.IsCorner)
		assert.Len(t, lot.Features, 2)
	})

	t.Run("building unit", func(t *testing.T) {
		raw := json.RawMessage(`{"area": 62.5, "bedrooms": 2, "bathrooms": 1, "floor_number": 4, "has_balcony": true}`)
		props, err := DecodeProperties(ProjectBuilding, raw)
		require.NoError(t, err)

		unit, ok := props.(BuildingUnitProperties)
		require.True(t, ok)
		assert.Equal(t, ProjectBuilding, unit.Kind())
		assert.Equal(t, 2, unit.Bedrooms)
		assert.Equal(t, 4, unit.FloorNumber)
		assert.True(t, unit.HasBalcony)
	})

	t.Run("empty bag", func(t *testing.T) {
		props, err := DecodeProperties(ProjectSubdivision, nil)
		require.NoError(t, err)
		assert.Equal(t, SubdivisionLotProperties{}, props)
	})

	t.Run("malformed bag", func(t *testing.T) {
		_, err := DecodeProperties(ProjectSubdivision, json.RawMessage(`{broken`))
		assert.Error(t, err)
	})

	t.Run("unknown project type", func(t *testing.T) {
		_, err := DecodeProperties(ProjectType("mall"), nil)
		assert.Error(t, err)
	})
}
