package imagecache

import (
	"encoding/base64"
	"fmt"
	"html"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
)

// placeholderSVG is the template for the generated fallback image. The id
// and variant are rendered as visible text so a placeholder can never be
// mistaken for a real sprite.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="256" height="256" viewBox="0 0 256 256">` +
	`<rect width="256" height="256" fill="#e8e8e8"/>` +
	`<circle cx="128" cy="104" r="56" fill="none" stroke="#b0b0b0" stroke-width="6"/>` +
	`<line x1="72" y1="104" x2="184" y2="104" stroke="#b0b0b0" stroke-width="6"/>` +
	`<circle cx="128" cy="104" r="14" fill="#b0b0b0"/>` +
	`<text x="128" y="200" text-anchor="middle" font-family="monospace" font-size="28" fill="#707070">#%d</text>` +
	`<text x="128" y="228" text-anchor="middle" font-family="monospace" font-size="14" fill="#909090">%s</text>` +
	`</svg>`

// PlaceholderURL returns a deterministic, backend-independent inline SVG
// data URI for the given pokemon and variant. The same inputs always
// produce the same URI, and generation cannot fail.
func PlaceholderURL(pokemonID int, imageType model.ImageType) string {
	// The variant string comes from the request path, so it must be
	// escaped before landing inside SVG markup.
	svg := fmt.Sprintf(placeholderSVG, pokemonID, html.EscapeString(string(imageType)))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
