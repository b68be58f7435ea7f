package mesh

// ConnectionManager tracks a device's active links and enforces per-role
// and total connection caps (spec §4.7). The initiator side of a link is
// the "client"; the other is the "server".
type ConnectionManager struct {
	maxClients int
	maxServers int
	maxTotal   int

	// order preserves insertion order so enforceLimits can evict the
	// oldest connection first.
	order []*Link
}

// NewConnectionManager creates a manager with the given per-role and
// total caps.
func NewConnectionManager(maxClients, maxServers, maxTotal int) *ConnectionManager {
	return &ConnectionManager{maxClients: maxClients, maxServers: maxServers, maxTotal: maxTotal}
}

// Links returns the currently tracked links, oldest first.
func (c *ConnectionManager) Links() []*Link {
	return c.order
}

func (c *ConnectionManager) countAsClient(owner *Device) int {
	n := 0
	for _, l := range c.order {
		if l.IsClient(owner) {
			n++
		}
	}
	return n
}

func (c *ConnectionManager) countAsServer(owner *Device) int {
	n := 0
	for _, l := range c.order {
		if !l.IsClient(owner) {
			n++
		}
	}
	return n
}

// CanAcceptConnection reports whether owner (this manager's device) could
// take on one more connection in the given role, respecting both the
// per-role cap and the total cap.
func (c *ConnectionManager) CanAcceptConnection(owner *Device, asClient bool) bool {
	if len(c.order) >= c.maxTotal {
		return false
	}
	if asClient {
		return c.countAsClient(owner) < c.maxClients
	}
	return c.countAsServer(owner) < c.maxServers
}

// AddConnection tracks a new link and enforces limits afterward, evicting
// the oldest connections (in insertion order) until back within caps. An
// evicted link is marked inactive; the engine removes it from both
// endpoints' managers on its next topology pass.
func (c *ConnectionManager) AddConnection(owner *Device, l *Link) {
	c.order = append(c.order, l)
	c.enforceLimits(owner)
}

// RemoveConnection drops a link from tracking, e.g. once the engine has
// torn it down.
func (c *ConnectionManager) RemoveConnection(l *Link) {
	for i, existing := range c.order {
		if existing == l {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// PruneInactive drops any tracked link that has been marked inactive
// elsewhere (e.g. evicted by the *other* endpoint's enforceLimits, or
// torn down by the engine) so stale entries don't keep counting against
// this device's connection caps.
func (c *ConnectionManager) PruneInactive() {
	live := c.order[:0]
	for _, l := range c.order {
		if l.IsActive {
			live = append(live, l)
		}
	}
	c.order = live
}

func (c *ConnectionManager) enforceLimits(owner *Device) {
	for len(c.order) > c.maxTotal || c.countAsClient(owner) > c.maxClients || c.countAsServer(owner) > c.maxServers {
		if len(c.order) == 0 {
			return
		}
		oldest := c.order[0]
		oldest.IsActive = false
		c.order = c.order[1:]
	}
}
