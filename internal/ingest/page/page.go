// Package page holds the server-side render targets of the upload page: the
// processing indicator, the success/warning banner, the last blocking alert,
// the overview fragment and the navigation sidebar.
package page

import (
	"fmt"
	"sync"
)

// SidebarBreakpoint is the viewport width (px) at which the sidebar switches
// between overlay and docked layout.
const SidebarBreakpoint = 900

const describeText = "Upload a CSV file to see the overview."

type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageSuccess MessageKind = "success"
)

// State is a snapshot of the page.
type State struct {
	Processing        bool
	ProcessingText    string
	DescriptionHidden bool
	DescriptionText   string
	Message           string
	MessageKind       MessageKind
	Alert             string
	Alerts            int
	OverviewHTML      string
	SidebarOpen       bool
}

// Page is safe for concurrent use.
type Page struct {
	mu    sync.RWMutex
	state State
}

func New() *Page {
	return &Page{state: State{DescriptionText: describeText}}
}

func (p *Page) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Processing shows the processing indicator and hides the description.
func (p *Page) Processing(fileName string, sizeMB float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Processing = true
	p.state.DescriptionHidden = true
	p.state.ProcessingText = fmt.Sprintf("Processing %s (%.2f MB)... Please wait.", fileName, sizeMB)
}

// Alert records a blocking alert without changing the rest of the page.
func (p *Page) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Alert = msg
	p.state.Alerts++
}

// Succeeded shows the banner and the overview and stops the indicator. The
// description stays hidden behind the overview.
func (p *Page) Succeeded(msg, overviewHTML string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Message = msg
	p.state.MessageKind = MessageSuccess
	p.state.OverviewHTML = overviewHTML
	p.state.Processing = false
}

// Failed reverts to the pre-upload state. A non-empty alert is recorded.
// The previous banner and overview are left as they were.
func (p *Page) Failed(alert string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if alert != "" {
		p.state.Alert = alert
		p.state.Alerts++
	}
	p.state.Processing = false
	p.state.DescriptionHidden = false
}

func (p *Page) ToggleSidebar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.SidebarOpen = !p.state.SidebarOpen
}

// ClickOutside closes the sidebar on narrow viewports when the click landed
// on neither the sidebar nor its toggle button.
func (p *Page) ClickOutside(insideSidebar, onToggle bool, viewportWidth int) {
	if insideSidebar || onToggle || viewportWidth > SidebarBreakpoint {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.SidebarOpen = false
}

// Resize closes the sidebar once the viewport is wide enough to dock it.
func (p *Page) Resize(viewportWidth int) {
	if viewportWidth < SidebarBreakpoint {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.SidebarOpen = false
}
