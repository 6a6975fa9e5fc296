package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey identifies a layout of the document with the given content
	// hash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	Direction string `json:"direction"`
	Engine    string `json:"engine"`
	// Version invalidates entries written by older planner releases.
	Version string `json:"version,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>" over the document hash and options.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
