// Package events names the attribute keys that bind host events to lazy
// references. A binding is written as an attribute whose key is the event
// name prefixed with "on:", e.g. "on:click".
package events

import "strings"

// Prefix marks an attribute key as an event binding.
const Prefix = "on:"

// Attr returns the binding key for an event name.
func Attr(event string) string {
	return Prefix + event
}

// IsBinding reports whether an attribute key is an event binding.
func IsBinding(attr string) bool {
	return strings.HasPrefix(attr, Prefix)
}

// Name returns the event name of a binding key. ok is false for keys that
// are not bindings or that name no event.
func Name(attr string) (event string, ok bool) {
	event, ok = strings.CutPrefix(attr, Prefix)
	if !ok || event == "" || strings.ContainsAny(event, " \t\n") {
		return "", false
	}
	return event, true
}
