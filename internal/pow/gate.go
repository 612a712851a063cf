package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/passvault/passvault/internal/common"
)

// Header names for client-submitted solutions. Matching is case-insensitive
// via http.Header canonicalization.
const (
	HeaderSolution  = "X-Pow-Solution"
	HeaderNonce     = "X-Pow-Nonce"
	HeaderTimestamp = "X-Pow-Timestamp"
)

const (
	// NonceBytes is the amount of entropy in an issued challenge nonce.
	NonceBytes = 32

	// DefaultChallengeTTL bounds how long a solved challenge stays valid.
	DefaultChallengeTTL = 60 * time.Second
)

// Challenge is an issued proof-of-work puzzle. It is never persisted: the
// client echoes nonce and timestamp back alongside its solution, and the
// verifier recomputes everything from those values.
type Challenge struct {
	Nonce      string `json:"nonce"`
	Difficulty int    `json:"difficulty"`
	Timestamp  int64  `json:"timestamp"`
	TTL        int64  `json:"ttl"`
}

// Gate issues and verifies proof-of-work challenges.
//
// Enabled=false turns the gate into a pass-through; this is a deliberate,
// configuration-driven bypass for low-trust profiles and must never be the
// silent default in production.
type Gate struct {
	Enabled bool
	TTL     time.Duration

	// now is a clock seam for tests. Nil means time.Now.
	now func() time.Time
}

// NewGate constructs a Gate. A ttl of zero selects DefaultChallengeTTL.
func NewGate(enabled bool, ttl time.Duration) *Gate {
	if ttl == 0 {
		ttl = DefaultChallengeTTL
	}
	return &Gate{Enabled: enabled, TTL: ttl}
}

func (g *Gate) timeNow() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

// Issue generates a fresh challenge for the given difficulty. Stateless:
// nothing is recorded, so an unsolved challenge costs the server nothing.
func (g *Gate) Issue(difficulty int) (*Challenge, error) {
	nonce, err := common.MakeRandHexString(NonceBytes)
	if err != nil {
		return nil, err
	}
	return &Challenge{
		Nonce:      nonce,
		Difficulty: difficulty,
		Timestamp:  g.timeNow().Unix(),
		TTL:        int64(g.TTL.Seconds()),
	}, nil
}

// Verify checks the client-supplied solution headers against the required
// difficulty. It returns nil on success, or one of common.ErrPowRequired
// (headers missing), common.ErrPowExpired (timestamp older than the TTL) or
// common.ErrPowInvalid (digest does not meet the difficulty).
//
// The digest is SHA-256 over the concatenation nonce || solution ||
// timestamp, with the timestamp in its decimal string form, the exact
// string the client hashed while searching.
func (g *Gate) Verify(headers http.Header, difficulty int) error {
	if !g.Enabled {
		return nil
	}

	solution := headers.Get(HeaderSolution)
	nonce := headers.Get(HeaderNonce)
	timestamp := headers.Get(HeaderTimestamp)

	if solution == "" || nonce == "" || timestamp == "" {
		return common.ErrPowRequired
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return common.ErrPowInvalid
	}
	if g.timeNow().Unix()-ts > int64(g.TTL.Seconds()) {
		return common.ErrPowExpired
	}

	if !HashMeetsDifficulty(digest(nonce, solution, timestamp), difficulty) {
		return common.ErrPowInvalid
	}

	return nil
}

func digest(nonce, solution, timestamp string) string {
	sum := sha256.Sum256([]byte(nonce + solution + timestamp))
	return hex.EncodeToString(sum[:])
}
