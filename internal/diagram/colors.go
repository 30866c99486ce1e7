package diagram

import (
	"strings"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

// ColorSet is the fill/stroke/indicator triple for one status, plus the
// human-readable status name used in accessible labels.
type ColorSet struct {
	Fill      string
	Stroke    string
	Indicator string
	Name      string
}

// StatusColors maps a status to its color set. Pure function of the closed
// 4-value enum; unknown values fall back to not_available.
func StatusColors(s domain.EntityStatus) ColorSet {
	switch s {
	case domain.StatusAvailable:
		return ColorSet{
			Fill:      "rgba(107, 175, 123, 0.12)",
			Stroke:    "#6BAF7B",
			Indicator: "#6BAF7B",
			Name:      "Disponible",
		}
	case domain.StatusReserved:
		return ColorSet{
			Fill:      "rgba(212, 162, 76, 0.12)",
			Stroke:    "#D4A24C",
			Indicator: "#D4A24C",
			Name:      "Reservado",
		}
	case domain.StatusSold:
		return ColorSet{
			Fill:      "rgba(196, 96, 90, 0.12)",
			Stroke:    "#C4605A",
			Indicator: "#C4605A",
			Name:      "Vendido",
		}
	default:
		return ColorSet{
			Fill:      "rgba(94, 90, 93, 0.12)",
			Stroke:    "#5E5A5D",
			Indicator: "#5E5A5D",
			Name:      "No Disponible",
		}
	}
}

// HoverFill raises the fill alpha so a hovered or focused region reads
// brighter without changing hue.
func (c ColorSet) HoverFill() string {
	return strings.Replace(c.Fill, "0.12", "0.32", 1)
}
