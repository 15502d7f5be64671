package view

import (
	"sync"

	"github.com/raysh454/repview/internal/markup"
)

// Container is the page element fetched content is rendered into.
type Container interface {
	// SetContent replaces the element's markup.
	SetContent(markup string)
}

// Element is an in-memory Container, safe for concurrent use.
type Element struct {
	id string

	mu      sync.RWMutex
	content string
	renders int
}

// NewElement returns an empty element with the given id.
func NewElement(id string) *Element {
	return &Element{id: id}
}

func (e *Element) ID() string { return e.id }

func (e *Element) SetContent(markup string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = markup
	e.renders++
}

// Content returns the current markup.
func (e *Element) Content() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.content
}

// Renders is the number of SetContent calls so far.
func (e *Element) Renders() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.renders
}

// Text returns the visible text of the current markup.
func (e *Element) Text() string {
	return markup.Text(e.Content())
}
