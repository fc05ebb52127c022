// Package auth decides whether a sender may invoke any bot capability.
package auth

// Guard checks senders against a configured allow-list. It holds a set so
// the list can grow past a single operator without changing the contract.
// Stateless after construction, safe for concurrent use.
type Guard struct {
	allowed map[int64]struct{}
}

// NewGuard creates a guard for the given sender IDs
func NewGuard(senderIDs []int64) *Guard {
	allowed := make(map[int64]struct{}, len(senderIDs))
	for _, id := range senderIDs {
		allowed[id] = struct{}{}
	}
	return &Guard{allowed: allowed}
}

// IsAuthorized reports whether the sender may use the bot. Denial is final
// for the event; callers reply with a denial message and mutate nothing.
func (g *Guard) IsAuthorized(senderID int64) bool {
	_, ok := g.allowed[senderID]
	return ok
}
