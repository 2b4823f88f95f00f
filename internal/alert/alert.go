// Package alert holds the core data model: a persistent registration that a
// user wants to be notified when a regex pattern starts (or stops) matching
// the content at a URL.
package alert

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"net/url"
	"strconv"

	"github.com/ZakisM/general-notifier/internal/match"
)

// Alert is one registration. Two addressing schemes coexist: ID is stable and
// content-derived (used internally, e.g. by the polling worker), Ordinal is
// the per-user 1-based position users type in commands. Ordinals stay
// contiguous: deleting an alert decrements every higher ordinal of the same
// user.
type Alert struct {
	ID           string
	URL          string
	MatchingText string
	Invert       bool
	UserID       int64
	Ordinal      int64
}

// New validates url and matchingText and builds an Alert with a
// content-derived ID. The ordinal is the caller's per-user count + 1.
func New(rawURL, matchingText string, invert bool, userID, ordinal int64) (Alert, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Alert{}, fmt.Errorf("please enter a valid URL")
	}
	if matchingText == "" {
		return Alert{}, fmt.Errorf("missing matching text")
	}
	if _, err := match.Compile(matchingText); err != nil {
		return Alert{}, fmt.Errorf("invalid matching text: %w", err)
	}

	return Alert{
		ID:           DeriveID(rawURL, matchingText, invert, userID),
		URL:          rawURL,
		MatchingText: matchingText,
		Invert:       invert,
		UserID:       userID,
		Ordinal:      ordinal,
	}, nil
}

// DeriveID returns the stable identifier for an alert: lower-case hex of a
// 64-bit FNV-1a digest of the fields in declaration order. Equal inputs yield
// equal ids across process restarts; a collision is treated as a duplicate
// registration.
func DeriveID(rawURL, matchingText string, invert bool, userID int64) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(rawURL))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(matchingText))
	_, _ = h.Write([]byte{0})
	if invert {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
	var id [8]byte
	// Bit-preserving reinterpret: high-bit user ids round-trip unchanged.
	binary.BigEndian.PutUint64(id[:], uint64(userID))
	_, _ = h.Write(id[:])
	return strconv.FormatUint(h.Sum64(), 16)
}

// ResponseMessage is a pending direct message. It exists only on the
// notification channel between the polling worker and the chat egress.
type ResponseMessage struct {
	UserID int64
	Text   string
}
