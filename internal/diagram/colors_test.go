package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

func TestStatusColors(t *testing.T) {
	tests := []struct {
		status domain.EntityStatus
		stroke string
		name   string
	}{
		{domain.StatusAvailable, "#6BAF7B", "Disponible"},
		{domain.StatusReserved, "#D4A24C", "Reservado"},
		{domain.StatusSold, "#C4605A", "Vendido"},
		{domain.StatusNotAvailable, "#5E5A5D", "No Disponible"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			c := StatusColors(tt.status)
			assert.Equal(t, tt.stroke, c.Stroke)
			assert.Equal(t, tt.stroke, c.Indicator)
			assert.Equal(t, tt.name, c.Name)
			assert.Contains(t, c.Fill, "0.12")
		})
	}
}

func TestStatusColors_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, StatusColors(domain.StatusNotAvailable), StatusColors(domain.EntityStatus("bogus")))
}

func TestStatusColors_Deterministic(t *testing.T) {
	for _, s := range []domain.EntityStatus{
		domain.StatusAvailable, domain.StatusReserved, domain.StatusSold, domain.StatusNotAvailable,
	} {
		assert.Equal(t, StatusColors(s), StatusColors(s))
	}
}

func TestHoverFill(t *testing.T) {
	c := StatusColors(domain.StatusAvailable)
	assert.Equal(t, "rgba(107, 175, 123, 0.32)", c.HoverFill())
	// Hue untouched, only the alpha moves.
	assert.Equal(t, c.Fill[:len("rgba(107, 175, 123, ")], c.HoverFill()[:len("rgba(107, 175, 123, ")])
}
