package realtime

import "sync"

// Presence tracks which users currently hold at least one live
// connection. It is display-only state: a restart wipes it with no
// correctness impact, and only the connect/disconnect path of a
// connection mutates its own entries. The map is never handed out.
type Presence struct {
	mu    sync.RWMutex
	conns map[string]map[*Client]struct{}
}

func NewPresence() *Presence {
	return &Presence{conns: make(map[string]map[*Client]struct{})}
}

func (p *Presence) add(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.conns[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		p.conns[c.userID] = set
	}
	set[c] = struct{}{}
}

func (p *Presence) remove(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.conns[c.userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(p.conns, c.userID)
	}
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns[userID]) > 0
}

// Online returns a snapshot of currently connected user ids.
func (p *Presence) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.conns))
	for id := range p.conns {
		out = append(out, id)
	}
	return out
}

func (p *Presence) clients(userID string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Client, 0, len(p.conns[userID]))
	for c := range p.conns[userID] {
		out = append(out, c)
	}
	return out
}
