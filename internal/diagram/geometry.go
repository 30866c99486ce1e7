package diagram

import (
	"strconv"
	"strings"
)

// Rect is an axis-aligned bounding box in document coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// BBox computes the node's bounding box from its geometry attributes.
// For <path> the coordinate list is scanned tolerantly: every number in the
// data attribute is taken as an x/y pair, which over-approximates for arc
// flags but is adequate for centering labels.
func (n *Node) BBox() (Rect, bool) {
	switch strings.ToLower(n.XMLName.Local) {
	case "rect":
		x := n.floatAttr("x")
		y := n.floatAttr("y")
		w := n.floatAttr("width")
		h := n.floatAttr("height")
		if w <= 0 || h <= 0 {
			return Rect{}, false
		}
		return Rect{x, y, w, h}, true
	case "circle":
		r := n.floatAttr("r")
		if r <= 0 {
			return Rect{}, false
		}
		return Rect{n.floatAttr("cx") - r, n.floatAttr("cy") - r, 2 * r, 2 * r}, true
	case "ellipse":
		rx := n.floatAttr("rx")
		ry := n.floatAttr("ry")
		if rx <= 0 || ry <= 0 {
			return Rect{}, false
		}
		return Rect{n.floatAttr("cx") - rx, n.floatAttr("cy") - ry, 2 * rx, 2 * ry}, true
	case "polygon", "polyline":
		return boundsOfNumbers(scanNumbers(n.Attr("points")))
	case "path":
		return boundsOfNumbers(scanNumbers(n.Attr("d")))
	case "g":
		var union Rect
		have := false
		for _, c := range n.Children {
			if b, ok := c.BBox(); ok {
				if !have {
					union, have = b, true
				} else {
					union = merge(union, b)
				}
			}
		}
		return union, have
	}
	return Rect{}, false
}

func (n *Node) floatAttr(name string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(n.Attr(name)), 64)
	return v
}

func boundsOfNumbers(nums []float64) (Rect, bool) {
	if len(nums) < 4 {
		return Rect{}, false
	}
	minX, minY := nums[0], nums[1]
	maxX, maxY := nums[0], nums[1]
	for i := 0; i+1 < len(nums); i += 2 {
		x, y := nums[i], nums[i+1]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}, true
}

func merge(a, b Rect) Rect {
	minX := min(a.X, b.X)
	minY := min(a.Y, b.Y)
	maxX := max(a.X+a.W, b.X+b.W)
	maxY := max(a.Y+a.H, b.Y+b.H)
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// scanNumbers extracts every decimal number from a coordinate string,
// accepting comma, space and command-letter separators.
func scanNumbers(s string) []float64 {
	var out []float64
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if v, err := strconv.ParseFloat(s[start:end], 64); err == nil {
			out = append(out, v)
		}
		start = -1
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9' || c == '.':
			if start < 0 {
				start = i
			}
		case c == '-' || c == '+':
			// A sign right after the exponent marker stays in the number;
			// anywhere else it terminates the previous one and starts the next.
			if start >= 0 && (s[i-1] == 'e' || s[i-1] == 'E') {
				continue
			}
			flush(i)
			start = i
		case c == 'e' || c == 'E':
			// Exponent only counts when inside a number.
			if start < 0 {
				flush(i)
			}
		default:
			flush(i)
		}
	}
	flush(len(s))
	return out
}
