// Package images builds catalog image URLs and caches downloaded image bytes.
package images

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/favor-advisor/internal/scoring"
)

// DefaultBaseURL is the image host root.
const DefaultBaseURL = "https://schaledb.com/"

// URLBuilder builds image URLs under a base host.
type URLBuilder struct {
	base string
}

// NewURLBuilder returns a builder rooted at baseURL, or DefaultBaseURL when empty.
func NewURLBuilder(baseURL string) *URLBuilder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &URLBuilder{base: strings.TrimSuffix(baseURL, "/")}
}

// Character returns the portrait URL for a character ID.
func (b *URLBuilder) Character(id string) string {
	return b.join("images/student/icon", url.PathEscape(id)+".webp")
}

// Gift returns the icon URL for a gift icon name.
func (b *URLBuilder) Gift(icon string) string {
	return b.join("images/item/icon", url.PathEscape(icon)+".webp")
}

// MultiplierBadge returns the badge URL for multipliers 2 through 4.
// ok is false for any other multiplier, which has no badge.
func (b *URLBuilder) MultiplierBadge(multiplier int) (u string, ok bool) {
	if multiplier <= scoring.BaseMultiplier || multiplier > scoring.MaxMultiplier {
		return "", false
	}
	return b.join("images/ui", fmt.Sprintf("Cafe_Interaction_Gift_0%d.png", multiplier)), true
}

func (b *URLBuilder) join(dir, file string) string {
	return b.base + "/" + dir + "/" + file
}
