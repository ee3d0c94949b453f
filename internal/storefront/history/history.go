// Package history keeps the "past purchases" id list that the storefront
// stores in a cookie for guest personalization.
package history

import (
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	CookieName = "past_purchases"
	MaxEntries = 12
	MaxAge     = 365 * 24 * time.Hour
)

// History is an ordered, deduplicated id list, newest first.
type History struct {
	ids []string
}

func Parse(raw string) *History {
	h := &History{}
	h.ids = merge(nil, strings.Split(raw, ","))
	return h
}

func FromRequest(r *http.Request) *History {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return &History{}
	}
	return Parse(c.Value)
}

// Record puts ids in front of the existing entries, keeping the first
// occurrence of each id and at most MaxEntries.
func (h *History) Record(ids ...string) {
	h.ids = merge(ids, h.ids)
}

func (h *History) IDs() []string {
	return slices.Clone(h.ids)
}

func (h *History) String() string {
	return strings.Join(h.ids, ",")
}

func (h *History) Cookie(now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    h.String(),
		Path:     "/",
		Expires:  now.Add(MaxAge),
		MaxAge:   int(MaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	}
}

func merge(front, back []string) []string {
	out := make([]string, 0, MaxEntries)
	for _, id := range slices.Concat(front, back) {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
