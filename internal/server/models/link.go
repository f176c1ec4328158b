package models

// Scheme identifies which derivation path produced a link.
type Scheme int

const (
	// SchemeServer links are encrypted by the server with Argon2id-derived keys.
	SchemeServer Scheme = iota + 1
	// SchemeClient links are encrypted by the client before upload.
	SchemeClient
)

func (s Scheme) String() string {
	switch s {
	case SchemeServer:
		return "server"
	case SchemeClient:
		return "client"
	default:
		return "unknown"
	}
}

// Material is the encrypted destination of a link. Salt is only set for
// client-scheme links.
type Material struct {
	Salt       []byte
	IV         []byte
	Ciphertext []byte
}

// Link is a stored record: the lookup hash (hex) and its encrypted material.
type Link struct {
	LookupHash string
	Material   Material
}
