package model

import "fmt"

// Pokemon ID bounds accepted by the image mediator. IDs outside this range
// short-circuit to a placeholder without touching the backend.
const (
	MinPokemonID = 1
	MaxPokemonID = 1010
)

// ImageType selects a sprite variant on the image backend.
type ImageType string

// Supported image variants.
const (
	ImageOfficialArtwork ImageType = "official-artwork"
	ImageSprite          ImageType = "sprite"
	ImageSpriteShiny     ImageType = "sprite-shiny"
	ImageHome            ImageType = "home"
	ImageHomeShiny       ImageType = "home-shiny"
)

// DefaultImageType is used when a caller does not specify a variant.
const DefaultImageType = ImageOfficialArtwork

var supportedImageTypes = map[ImageType]struct{}{
	ImageOfficialArtwork: {},
	ImageSprite:          {},
	ImageSpriteShiny:     {},
	ImageHome:            {},
	ImageHomeShiny:       {},
}

// Valid reports whether t names a supported image variant.
func (t ImageType) Valid() bool {
	_, ok := supportedImageTypes[t]
	return ok
}

// ValidPokemonID reports whether id falls inside the supported dex range.
func ValidPokemonID(id int) bool {
	return id >= MinPokemonID && id <= MaxPokemonID
}

// ImageCacheKey is the composite key the mediator caches under.
func ImageCacheKey(pokemonID int, imageType ImageType) string {
	return fmt.Sprintf("%d_%s", pokemonID, imageType)
}
