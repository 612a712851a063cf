package pow

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/passvault/passvault/internal/common"
)

// testDifficulty keeps the brute-force search fast in tests (~256 tries).
const testDifficulty = 8

func solvedHeaders(t *testing.T, g *Gate, difficulty int) (http.Header, *Challenge) {
	t.Helper()

	ch, err := g.Issue(difficulty)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	solution, err := Solve(ctx, ch)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	h := http.Header{}
	h.Set(HeaderSolution, solution)
	h.Set(HeaderNonce, ch.Nonce)
	h.Set(HeaderTimestamp, strconv.FormatInt(ch.Timestamp, 10))
	return h, ch
}

func TestGate_Issue(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)
	ch, err := g.Issue(18)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if len(ch.Nonce) != NonceBytes*2 {
		t.Errorf("nonce length: got %d want %d hex chars", len(ch.Nonce), NonceBytes*2)
	}
	if ch.Difficulty != 18 {
		t.Errorf("difficulty: got %d want 18", ch.Difficulty)
	}
	if ch.TTL != int64(DefaultChallengeTTL.Seconds()) {
		t.Errorf("ttl: got %d want %d", ch.TTL, int64(DefaultChallengeTTL.Seconds()))
	}
	if d := time.Now().Unix() - ch.Timestamp; d < 0 || d > 5 {
		t.Errorf("timestamp not current: delta=%d", d)
	}
}

func TestGate_Verify_RoundTrip(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)
	h, _ := solvedHeaders(t, g, testDifficulty)

	if err := g.Verify(h, testDifficulty); err != nil {
		t.Fatalf("Verify rejected a valid solution: %v", err)
	}
}

func TestGate_Verify_MutationsRejected(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)

	mutate := func(name string, f func(h http.Header)) {
		h, _ := solvedHeaders(t, g, testDifficulty)
		f(h)
		if err := g.Verify(h, testDifficulty); !errors.Is(err, common.ErrPowInvalid) {
			t.Errorf("%s: got %v, want ErrPowInvalid", name, err)
		}
	}

	mutate("flipped solution", func(h http.Header) {
		s := h.Get(HeaderSolution)
		h.Set(HeaderSolution, flipLastHexChar(s))
	})
	mutate("flipped nonce", func(h http.Header) {
		s := h.Get(HeaderNonce)
		h.Set(HeaderNonce, flipLastHexChar(s))
	})
	mutate("shifted timestamp", func(h http.Header) {
		ts, _ := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
		h.Set(HeaderTimestamp, strconv.FormatInt(ts-1, 10))
	})
}

func flipLastHexChar(s string) string {
	b := []byte(s)
	if b[len(b)-1] == '0' {
		b[len(b)-1] = '1'
	} else {
		b[len(b)-1] = '0'
	}
	return string(b)
}

func TestGate_Verify_MissingHeaders(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)
	h, _ := solvedHeaders(t, g, testDifficulty)

	for _, name := range []string{HeaderSolution, HeaderNonce, HeaderTimestamp} {
		partial := h.Clone()
		partial.Del(name)
		if err := g.Verify(partial, testDifficulty); !errors.Is(err, common.ErrPowRequired) {
			t.Errorf("missing %s: got %v, want ErrPowRequired", name, err)
		}
	}
}

func TestGate_Verify_TTLBoundary(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)
	h, ch := solvedHeaders(t, g, testDifficulty)

	// Exactly at the TTL: still valid.
	g.now = func() time.Time { return time.Unix(ch.Timestamp+ch.TTL, 0) }
	if err := g.Verify(h, testDifficulty); err != nil {
		t.Fatalf("solution at exactly ttl seconds rejected: %v", err)
	}

	// One second past: expired.
	g.now = func() time.Time { return time.Unix(ch.Timestamp+ch.TTL+1, 0) }
	if err := g.Verify(h, testDifficulty); !errors.Is(err, common.ErrPowExpired) {
		t.Fatalf("solution at ttl+1 seconds: got %v, want ErrPowExpired", err)
	}
}

func TestGate_Verify_MalformedTimestamp(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)
	h, _ := solvedHeaders(t, g, testDifficulty)
	h.Set(HeaderTimestamp, "not-a-number")

	if err := g.Verify(h, testDifficulty); !errors.Is(err, common.ErrPowInvalid) {
		t.Fatalf("got %v, want ErrPowInvalid", err)
	}
}

func TestGate_Disabled_SkipsVerification(t *testing.T) {
	t.Parallel()

	g := NewGate(false, 0)
	if err := g.Verify(http.Header{}, 20); err != nil {
		t.Fatalf("disabled gate must accept without headers, got %v", err)
	}
}

func TestSolve_Cancellation(t *testing.T) {
	t.Parallel()

	g := NewGate(true, 0)
	ch, err := g.Issue(200) // practically unsolvable
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := Solve(ctx, ch); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want context.DeadlineExceeded", err)
	}
}
