package mesh

// PeerInfo is what a device knows about another peer, kept fresh by
// every non-duplicate ANNOUNCE received about it (spec §3).
type PeerInfo struct {
	ID       string // canonical lowercase hex peer ID
	Nickname string
	LastSeen float64 // sim time, seconds
	IsDirect bool
	Hops     int
}

// PeerManager is a device's table of known peers, keyed by hex peer ID.
type PeerManager struct {
	peers map[string]*PeerInfo
}

// NewPeerManager creates an empty peer table.
func NewPeerManager() *PeerManager {
	return &PeerManager{peers: make(map[string]*PeerInfo)}
}

// Update records (or refreshes) a peer's info. isDirect holds iff the
// transmitting neighbor's peer ID equals the announcement's sender
// (spec §3's invariant).
func (pm *PeerManager) Update(id, nickname string, isDirect bool, hops int, now float64) {
	pm.peers[id] = &PeerInfo{
		ID:       id,
		Nickname: nickname,
		LastSeen: now,
		IsDirect: isDirect,
		Hops:     hops,
	}
}

// Get returns the known info for a peer, or nil if unknown.
func (pm *PeerManager) Get(id string) *PeerInfo {
	return pm.peers[id]
}

// All returns every known peer.
func (pm *PeerManager) All() []*PeerInfo {
	out := make([]*PeerInfo, 0, len(pm.peers))
	for _, p := range pm.peers {
		out = append(out, p)
	}
	return out
}
