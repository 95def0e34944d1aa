package runtime

import (
	"fmt"
	"strings"

	"github.com/vcrobe/lazydom/dom"
)

// StyleInjector receives the style text of component kinds.
type StyleInjector interface {
	Inject(key, css string) error
	Remove(key string)
}

// DocumentStyles injects styles as <style q:style="key"> elements appended
// to a document head.
type DocumentStyles struct {
	doc   dom.Document
	nodes map[string]dom.Node
}

var _ StyleInjector = (*DocumentStyles)(nil)

// NewDocumentStyles creates an injector for doc.
func NewDocumentStyles(doc dom.Document) *DocumentStyles {
	return &DocumentStyles{doc: doc, nodes: make(map[string]dom.Node)}
}

func (s *DocumentStyles) Inject(key, css string) error {
	if _, ok := s.nodes[key]; ok {
		return nil
	}
	el := s.doc.CreateElement("style")
	el.SetAttribute("q:style", key)
	if err := el.InsertBefore(s.doc.CreateTextNode(css), nil); err != nil {
		return fmt.Errorf("failed to build style %s: %w", key, err)
	}
	if err := s.doc.Head().InsertBefore(el, nil); err != nil {
		return fmt.Errorf("failed to inject style %s: %w", key, err)
	}
	s.nodes[key] = el
	return nil
}

func (s *DocumentStyles) Remove(key string) {
	el, ok := s.nodes[key]
	if !ok {
		return
	}
	delete(s.nodes, key)
	if parent := el.Parent(); parent != nil {
		_ = parent.RemoveChild(el)
	}
}

// attachStyles scopes the instance's host and injects the kind's styles
// for its first live instance.
func (r *Renderer) attachStyles(inst *instance) {
	if len(inst.styleRefs) == 0 {
		return
	}
	key := inst.kind.StyleKey()
	inst.host.SetAttribute(styleScopeAttr, key)
	inst.styled = true
	r.styleRefs[inst.kind]++
	if r.styleRefs[inst.kind] > 1 {
		return
	}
	parts := make([]string, 0, len(inst.styleRefs))
	for _, ref := range inst.styleRefs {
		target, err := ref.Resolve(r.ctx, r.resolver)
		if err != nil {
			r.report(err)
			continue
		}
		css, ok := target.(string)
		if !ok {
			r.report(&RenderError{
				Component: inst.name(),
				Instance:  uint64(inst.id),
				Err:       fmt.Errorf("style %s resolved to %T, not string", ref.Symbol(), target),
			})
			continue
		}
		parts = append(parts, css)
	}
	if err := r.styles.Inject(key, strings.Join(parts, "\n")); err != nil {
		r.report(err)
	}
}

func (r *Renderer) releaseStyles(inst *instance) {
	if !inst.styled {
		return
	}
	inst.styled = false
	r.styleRefs[inst.kind]--
	if r.styleRefs[inst.kind] > 0 {
		return
	}
	delete(r.styleRefs, inst.kind)
	r.styles.Remove(inst.kind.StyleKey())
}
