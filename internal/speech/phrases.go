// Package speech — phrases.go builds every spoken announcement.
// Keep lines short and direct; the TTS engine handles inflection.
package speech

import (
	"fmt"
	"strings"

	"github.com/lfmorais/expede/internal/domain"
)

// platformPrefixes maps known order-number prefixes to the delivery
// platform they come from. A match forces platform-flavored phrasing
// regardless of the configured template kind.
var platformPrefixes = map[string]string{
	"IF": "iFood",
	"RA": "Rappi",
	"UB": "Uber Eats",
	"AF": "Aiqfome",
}

// BuildAnnouncement renders the spoken text for a ready order.
func BuildAnnouncement(order domain.Order, cfg Config) string {
	if platform := detectPlatform(order); platform != "" {
		return linePlatformReady(platform, order.Number)
	}

	switch cfg.Template {
	case TemplateNameReady:
		if order.Nickname != "" {
			return fmt.Sprintf("%s, your order is ready.", order.Nickname)
		}
		return lineNumberReady(order.Number)
	case TemplateOrderReady:
		return fmt.Sprintf("Order %s is ready for pickup.", spellNumber(order.Number))
	case TemplateNameOrderReady:
		if order.Nickname != "" {
			return fmt.Sprintf("%s, order %s is ready.", order.Nickname, spellNumber(order.Number))
		}
		return lineNumberReady(order.Number)
	case TemplateCustom:
		if strings.TrimSpace(cfg.CustomTemplate) != "" {
			return cfg.CustomTemplate
		}
		return lineNumberReady(order.Number)
	default: // TemplateNumberOnly
		return lineNumberReady(order.Number)
	}
}

// detectPlatform returns the delivery platform for an order, from the
// explicit attribute first, then from a recognized number prefix.
func detectPlatform(order domain.Order) string {
	if order.Platform != "" {
		return order.Platform
	}
	for prefix, name := range platformPrefixes {
		if strings.HasPrefix(order.Number, prefix+"-") {
			return name
		}
	}
	return ""
}

func linePlatformReady(platform, number string) string {
	return fmt.Sprintf("%s order %s is ready.", platform, spellNumber(number))
}

func lineNumberReady(number string) string {
	return fmt.Sprintf("Order %s, ready.", spellNumber(number))
}

// spellNumber spaces out the digits of a platform-prefixed number so
// the TTS engine reads "IF-123" as "1 2 3" instead of an acronym.
func spellNumber(number string) string {
	i := strings.IndexByte(number, '-')
	if i < 0 {
		return number
	}
	digits := number[i+1:]
	out := make([]string, 0, len(digits))
	for _, r := range digits {
		out = append(out, string(r))
	}
	if len(out) == 0 {
		return number
	}
	return strings.Join(out, " ")
}
