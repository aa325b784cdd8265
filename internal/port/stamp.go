package port

// StampStore persists the identity marker of a cached file so that a later
// validation can detect remote changes without a body fetch.
type StampStore interface {
	// Write persists stamp as the full content of the stamp file derived
	// from cachePath, overwriting any prior content.
	Write(cachePath, stamp string) error

	// Matches reports whether the persisted stamp for cachePath exists
	// and is byte-identical to stamp. A missing stamp file or a read
	// failure yields false, never an error.
	Matches(cachePath, stamp string) bool
}
