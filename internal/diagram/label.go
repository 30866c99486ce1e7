package diagram

import (
	"encoding/xml"
	"fmt"
	"log"
	"strings"
)

// overlayMarker tags synthesized nodes so teardown and tests can tell them
// apart from authored content.
const overlayMarker = "data-overlay"

// synthesizeLabelLocked appends a pill-shaped label with a status indicator
// dot near the region's bounding box. Purely decorative: the group never
// intercepts pointer events.
func (v *Viewport) synthesizeLabelLocked(region *Node, label string, colors ColorSet) {
	bbox, ok := region.BBox()
	if !ok {
		log.Printf("[warn] operation=diagram_label region=%q has no usable geometry", region.Attr("id"))
		return
	}

	cx := bbox.CenterX()
	cy := bbox.CenterY()
	textWidth := float64(len(label))*8 + 10

	group := &Node{XMLName: xml.Name{Local: "g"}}
	group.SetAttr("pointer-events", "none")
	group.SetAttr(overlayMarker, "label")
	group.SetAttr(overlayMarker+"-for", region.Attr("id"))

	pill := &Node{XMLName: xml.Name{Local: "rect"}}
	pill.SetAttr("x", num(cx-textWidth/2))
	pill.SetAttr("y", num(cy-15))
	pill.SetAttr("width", num(textWidth))
	pill.SetAttr("height", "22")
	pill.SetAttr("rx", "4")
	pill.SetAttr("fill", "rgba(255, 255, 255, 0.9)")
	pill.SetAttr("stroke", colors.Stroke)
	pill.SetAttr("stroke-width", "1")

	dot := &Node{XMLName: xml.Name{Local: "circle"}}
	dot.SetAttr("cx", num(cx-20))
	dot.SetAttr("cy", num(cy-5))
	dot.SetAttr("r", "6")
	dot.SetAttr("fill", colors.Indicator)
	dot.SetAttr("stroke", "white")
	dot.SetAttr("stroke-width", "2")

	text := &Node{XMLName: xml.Name{Local: "text"}, Text: label}
	text.SetAttr("x", num(cx))
	text.SetAttr("y", num(cy-1))
	text.SetAttr("text-anchor", "middle")
	text.SetAttr("dominant-baseline", "middle")
	text.SetAttr("font-size", "14")
	text.SetAttr("font-weight", "600")
	text.SetAttr("fill", "#333")

	group.Children = append(group.Children, pill, dot, text)
	v.doc.Root.Children = append(v.doc.Root.Children, group)
}

// injectBackgroundLocked inserts a full-bleed image as the document's first
// child so every overlay region draws above it. The image is sized to the
// document's declared coordinate frame and kept translucent.
func (v *Viewport) injectBackgroundLocked(url string) {
	root := v.doc.Root
	w, h := frameSize(root)

	img := &Node{XMLName: xml.Name{Local: "image"}}
	img.SetAttr("href", url)
	img.SetAttr("x", "0")
	img.SetAttr("y", "0")
	img.SetAttr("width", num(w))
	img.SetAttr("height", num(h))
	img.SetAttr("preserveAspectRatio", "xMidYMid slice")
	img.SetAttr("opacity", "0.6")
	img.SetAttr(overlayMarker, "background")

	root.Children = append([]*Node{img}, root.Children...)
}

// frameSize derives the document's coordinate frame from the viewBox,
// falling back to width/height attributes.
func frameSize(root *Node) (float64, float64) {
	if vb := root.Attr("viewBox"); vb != "" {
		nums := scanNumbers(vb)
		if len(nums) == 4 {
			return nums[2], nums[3]
		}
	}
	w := root.floatAttr("width")
	h := root.floatAttr("height")
	if w <= 0 || h <= 0 {
		return 1000, 1000
	}
	return w, h
}

func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
