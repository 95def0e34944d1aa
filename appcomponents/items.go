package appcomponents

import (
	"context"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/store"
	"github.com/vcrobe/lazydom/vdom"
)

// ItemsToggle is the symbol of the handler that flips an item's done flag.
const ItemsToggle = "Items_toggle"

// ItemDetail renders one item store passed as the itemObj prop.
var ItemDetail = runtime.Define("item-detail", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
	toggle := lazyref.Deferred(ItemsToggle)
	return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
		item := rc.PropStore("itemObj")
		if item == nil {
			return vdom.Span("loading...", nil)
		}
		title := item.String("title")
		if title == "" {
			title = "loading..."
		}
		return vdom.Fragment(
			vdom.Checkbox(item.Bool("done"), map[string]any{
				"on:change": toggle.WithScope(item.Source()),
			}),
			vdom.Span(title, nil),
		)
	})
})

// Items renders every store in the items list of its items prop, then the
// total.
var Items = runtime.Define("items", func(s *runtime.Setup, props runtime.Props) *runtime.RenderDescriptor {
	return runtime.OnRender(func(rc *runtime.RenderContext) *vdom.VNode {
		view := rc.PropStore("items")
		if view == nil {
			return vdom.Text("Total: 0")
		}
		list := view.List("items")
		var rows []*vdom.VNode
		total := 0
		if list != nil {
			total = list.Len()
			list.Each(func(_ int, item any) {
				rows = append(rows, ItemDetail.New(runtime.Props{"itemObj": item}))
			})
		}
		rows = append(rows, vdom.Textf("Total: %d", total))
		return vdom.Fragment(rows...)
	})
})

// NewItemsState builds the store Items expects from plain records.
func NewItemsState(items ...map[string]any) *store.Store {
	list := make([]any, 0, len(items))
	for _, item := range items {
		list = append(list, store.New(item))
	}
	return store.New(map[string]any{"items": list})
}

func itemsToggleHandler(_ context.Context, c *lazyref.Call) error {
	c.Expect(1)
	item := lazyref.Arg[*store.Store](c, 0)
	done, _ := item.Get("done").(bool)
	item.Set("done", !done)
	return nil
}
