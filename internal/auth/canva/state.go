package canva

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// pendingAuth ties an OAuth state token to the user who started the flow
// and the PKCE verifier generated for it.
type pendingAuth struct {
	UserID    string
	Verifier  string
	CreatedAt time.Time
}

// stateTTL bounds how long a started flow stays redeemable.
const stateTTL = 10 * time.Minute

var (
	pendingMu sync.Mutex
	pending   = make(map[string]pendingAuth)
)

// newState registers a pending flow for userID and returns its state token.
func newState(userID, verifier string) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := hex.EncodeToString(b)

	pendingMu.Lock()
	defer pendingMu.Unlock()
	for key, p := range pending {
		if time.Since(p.CreatedAt) > stateTTL {
			delete(pending, key)
		}
	}
	pending[state] = pendingAuth{UserID: userID, Verifier: verifier, CreatedAt: time.Now()}
	return state
}

// redeemState consumes a state token, returning the pending flow if valid.
func redeemState(state string) (pendingAuth, bool) {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	p, ok := pending[state]
	if !ok {
		return pendingAuth{}, false
	}
	delete(pending, state)
	if time.Since(p.CreatedAt) > stateTTL {
		return pendingAuth{}, false
	}
	return p, true
}
