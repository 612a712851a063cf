// Package pow implements the proof-of-work gate: a CPU-cost barrier that
// clients must pay before submitting sensitive requests. The server issues a
// random nonce, the client brute-forces a solution whose SHA-256 digest has
// a required number of leading zero bits, and the server re-derives the
// digest to verify. Nothing is stored server-side; validity is a pure
// function of the submitted values and the clock.
package pow

// HashMeetsDifficulty reports whether the first difficulty bits of a hex
// digest are zero. Difficulty is measured in bits, not hex characters.
//
// The check runs in two passes: every full nibble (4 bits) must be the hex
// character '0', and any remaining bits are isolated with a mask over the
// top of the next nibble. The same two-pass check runs on both the issuing
// and the solving side; the bit layout must match exactly or solutions stop
// interoperating.
func HashMeetsDifficulty(hash string, difficulty int) bool {
	fullNibbles := difficulty / 4
	if fullNibbles > len(hash) {
		return false
	}
	for i := 0; i < fullNibbles; i++ {
		if hash[i] != '0' {
			return false
		}
	}

	remainingBits := difficulty % 4
	if remainingBits > 0 {
		if fullNibbles >= len(hash) {
			return false
		}
		nibble := hexNibble(hash[fullNibbles])
		if nibble < 0 {
			return false
		}
		mask := (0xF << (4 - remainingBits)) & 0xF
		if nibble&mask != 0 {
			return false
		}
	}

	return true
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
