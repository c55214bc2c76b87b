package domain

import "strings"

// CollabKey is the form of an email that is safe to use as a document map
// key: the store cannot hold dots inside field names, so every "." is
// replaced by the "[dot]" token. The transform is reversible and
// collision-free over any input: a literal "[" is escaped first so that an
// email already containing the token text cannot alias an encoded one.
type CollabKey string

// EncodeCollabKey converts an email into its map-key form.
func EncodeCollabKey(email string) CollabKey {
	s := strings.ReplaceAll(email, "[", "[lb]")
	s = strings.ReplaceAll(s, ".", "[dot]")
	return CollabKey(s)
}

// Email recovers the original email from the map-key form.
func (k CollabKey) Email() string {
	s := strings.ReplaceAll(string(k), "[dot]", ".")
	return strings.ReplaceAll(s, "[lb]", "[")
}

// String returns the encoded form.
func (k CollabKey) String() string { return string(k) }
