package server

import (
	"sync"

	"github.com/raysh454/repview/internal/view"
)

// Page is the served view.html: it keeps the content container and pushes
// every change to the connected websocket clients.
type Page struct {
	el *view.Element

	mu   sync.Mutex
	subs map[chan string]struct{}
}

func NewPage(containerID string) *Page {
	if containerID == "" {
		containerID = view.DefaultContainerID
	}
	return &Page{el: view.NewElement(containerID), subs: make(map[chan string]struct{})}
}

func (p *Page) ID() string { return p.el.ID() }

func (p *Page) Content() string { return p.el.Content() }

// Element exposes the underlying container state.
func (p *Page) Element() *view.Element { return p.el }

// SetContent implements view.Container.
func (p *Page) SetContent(markup string) {
	p.el.SetContent(markup)

	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		// keep only the newest content for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- markup
	}
}

// Subscribe returns a channel receiving each new content and a func that
// ends the subscription.
func (p *Page) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
		})
	}
}

func (p *Page) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
