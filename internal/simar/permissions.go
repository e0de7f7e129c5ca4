package simar

import "sync"

// Permissions is an in-process camera permission store. RequestPermission
// answers through the result callback on a separate goroutine, the way a
// mobile permission dialog returns to the activity later.
type Permissions struct {
	mu       sync.Mutex
	granted  bool
	grant    bool
	pending  bool
	onResult func(granted bool)
}

// NewPermissions returns a store that starts with granted and answers
// requests with grantOnRequest. onResult may be nil.
func NewPermissions(granted, grantOnRequest bool, onResult func(granted bool)) *Permissions {
	return &Permissions{granted: granted, grant: grantOnRequest, onResult: onResult}
}

func (p *Permissions) HasCameraPermission() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.granted
}

// RequestPermission starts a request. A request made while another is
// pending is dropped.
func (p *Permissions) RequestPermission() {
	p.mu.Lock()
	if p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = true
	p.mu.Unlock()

	go func() {
		p.mu.Lock()
		p.pending = false
		p.granted = p.grant
		granted, cb := p.granted, p.onResult
		p.mu.Unlock()
		if cb != nil {
			cb(granted)
		}
	}()
}
