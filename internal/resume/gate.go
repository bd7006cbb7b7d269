package resume

import "crypto/subtle"

// Gate guards resume mutations with a shared secret.
type Gate struct {
	secret []byte
}

func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Check compares in constant time. An empty secret never matches.
func (g *Gate) Check(candidate string) bool {
	if g == nil || len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(g.secret, []byte(candidate)) == 1
}
