package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		attr  string
		event string
		ok    bool
	}{
		{"on:click", "click", true},
		{"on:q-render", "q-render", true},
		{"on:", "", false},
		{"on:bad name", "", false},
		{"onClick", "", false},
		{"class", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			event, ok := Name(tt.attr)
			assert.Equal(t, tt.event, event)
			assert.Equal(t, tt.ok, ok)
		})
	}
	assert.Equal(t, "on:input", Attr("input"))
	assert.True(t, IsBinding("on:"))
}
