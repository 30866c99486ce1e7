package diagram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

// State is the lifecycle state of a mounted viewport.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

// LoadError marks a diagram fetch/parse failure. It is non-fatal to the
// page: the caller renders an inline error state instead.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load diagram %s: %v", e.URL, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// EntityConfig describes one domain entity to bind to a diagram region.
type EntityConfig struct {
	RegionID string
	Label    string
	Status   domain.EntityStatus
	// OnActivate runs on click or keyboard activation of the bound region.
	OnActivate func()
}

// LoadOptions tunes a single load.
type LoadOptions struct {
	// BackgroundURL, when set, is injected as a full-bleed image under the
	// overlay regions at reduced opacity.
	BackgroundURL string
}

// EventType enumerates the interactions a host surface can dispatch.
type EventType int

const (
	PointerEnter EventType = iota
	PointerLeave
	Click
	Focus
	Blur
	KeyDown
)

// Event is one interaction aimed at a bound region.
type Event struct {
	Type     EventType
	RegionID string
	// Key is consulted for KeyDown; Enter and Space activate.
	Key string
}

type binding struct {
	entity EntityConfig
	node   *Node
	colors ColorSet
	// One logical listener per event kind; detached as a unit on teardown.
	events []EventType
}

// Viewport is one mounted diagram instance. A load fully tears down the
// previous document's bindings before applying the new one; a load that is
// superseded or cancelled discards its result without side effects.
type Viewport struct {
	client  *http.Client
	mu      sync.Mutex
	gen     int
	state   State
	loadErr error
	doc     *Document
	bound   map[string]*binding
}

// NewViewport creates an unmounted viewport. A nil client gets a default
// with a conservative timeout.
func NewViewport(client *http.Client) *Viewport {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Viewport{client: client, bound: map[string]*binding{}}
}

// Load fetches and binds a diagram document. On success the viewport is
// ready; on failure it is in the error state with a *LoadError. Entities
// whose region id has no match in the document are logged and skipped.
func (v *Viewport) Load(ctx context.Context, documentURL string, entities []EntityConfig, opts LoadOptions) error {
	v.mu.Lock()
	v.teardownLocked()
	v.gen++
	myGen := v.gen
	v.state = StateLoading
	v.mu.Unlock()

	doc, err := v.fetch(ctx, documentURL)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gen != myGen {
		// Superseded by a newer load or an unmount; drop the result.
		return nil
	}
	if err == nil && ctx.Err() != nil {
		err = &LoadError{URL: documentURL, Err: ctx.Err()}
	}
	if err != nil {
		v.state = StateError
		v.loadErr = err
		return err
	}

	v.doc = doc
	v.applyLocked(entities, opts)
	v.state = StateReady
	v.loadErr = nil
	return nil
}

func (v *Viewport) fetch(ctx context.Context, documentURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, &LoadError{URL: documentURL, Err: err}
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: documentURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoadError{URL: documentURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	doc, err := Parse(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, &LoadError{URL: documentURL, Err: err}
	}
	return doc, nil
}

func (v *Viewport) applyLocked(entities []EntityConfig, opts LoadOptions) {
	root := v.doc.Root

	// Scale to the container and let any background show through.
	root.SetAttr("width", "100%")
	root.SetAttr("height", "100%")
	root.Style("display", "block")
	root.Style("background", "transparent")

	if opts.BackgroundURL != "" {
		v.injectBackgroundLocked(opts.BackgroundURL)
	}

	wanted := make(map[string]bool, len(entities))
	for _, e := range entities {
		wanted[e.RegionID] = true
	}

	// Dim every shape that no entity targets so the background reads through.
	root.Walk(func(n *Node) bool {
		if n.IsShape() && !wanted[n.Attr("id")] {
			n.Style("opacity", "0.3")
		}
		return true
	})

	for _, e := range entities {
		node := v.doc.FindByID(e.RegionID)
		if node == nil {
			// Diagram and data are authored independently; drift is expected.
			log.Printf("[warn] operation=diagram_bind region=%q not found in document", e.RegionID)
			continue
		}

		colors := StatusColors(e.Status)
		node.Style("cursor", "pointer")
		node.Style("transition", "all 0.3s ease")
		node.Style("fill", colors.Fill)
		node.Style("stroke", colors.Stroke)
		node.Style("stroke-width", "2")

		// Accessible variant: regions are focusable and announce their
		// label together with the human-readable status.
		node.SetAttr("tabindex", "0")
		node.SetAttr("role", "button")
		node.SetAttr("aria-label", e.Label+" — "+colors.Name)

		v.bound[e.RegionID] = &binding{
			entity: e,
			node:   node,
			colors: colors,
			events: []EventType{PointerEnter, PointerLeave, Click, Focus, Blur, KeyDown},
		}

		v.synthesizeLabelLocked(node, e.Label, colors)
	}
}

// Unmount detaches every listener and clears the rendered content. Safe to
// call in any state, any number of times.
func (v *Viewport) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.teardownLocked()
	v.state = StateLoading
	v.loadErr = nil
}

func (v *Viewport) teardownLocked() {
	for id := range v.bound {
		delete(v.bound, id)
	}
	v.doc = nil
}

// Dispatch delivers an interaction event to the bound region. It returns
// false when the region has no active listener for the event (including
// after teardown).
func (v *Viewport) Dispatch(ev Event) bool {
	v.mu.Lock()
	b, ok := v.bound[ev.RegionID]
	if !ok || v.state != StateReady {
		v.mu.Unlock()
		return false
	}

	var activate func()
	switch ev.Type {
	case PointerEnter, Focus:
		b.node.Style("fill", b.colors.HoverFill())
		b.node.Style("stroke-width", "4")
		if ev.Type == Focus {
			b.node.Style("outline", "2px solid "+b.colors.Stroke)
		}
	case PointerLeave, Blur:
		b.node.Style("fill", b.colors.Fill)
		b.node.Style("stroke-width", "2")
		if ev.Type == Blur {
			b.node.Style("outline", "none")
		}
	case Click:
		activate = b.entity.OnActivate
	case KeyDown:
		if ev.Key == "Enter" || ev.Key == " " || strings.EqualFold(ev.Key, "Space") {
			activate = b.entity.OnActivate
		}
	}
	v.mu.Unlock()

	// Activation runs outside the lock: handlers typically trigger a new
	// Load on this same viewport.
	if activate != nil {
		activate()
	}
	return true
}

// State reports the lifecycle state.
func (v *Viewport) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the load error, if the viewport is in the error state.
func (v *Viewport) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadErr
}

// ListenerCount returns the number of attached listeners across all bound
// regions.
func (v *Viewport) ListenerCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, b := range v.bound {
		n += len(b.events)
	}
	return n
}

// BoundRegions returns the ids of regions that resolved to a document
// element, sorted order not guaranteed.
func (v *Viewport) BoundRegions() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.bound))
	for id := range v.bound {
		out = append(out, id)
	}
	return out
}

// RenderSVG serializes the styled, labeled document. Fails unless ready.
func (v *Viewport) RenderSVG() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateReady || v.doc == nil {
		return "", fmt.Errorf("viewport not ready")
	}
	return v.doc.Render()
}

// Document exposes the parsed tree for inspection. Nil unless ready.
func (v *Viewport) Document() *Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc
}
