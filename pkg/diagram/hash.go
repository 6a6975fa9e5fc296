package diagram

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of the document's JSON encoding. Map keys are
// sorted by encoding/json, so equal documents hash equally regardless of how
// they were read.
func Hash(doc *Document) string {
	data, _ := json.Marshal(doc)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
