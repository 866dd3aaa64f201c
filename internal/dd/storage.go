package dd

// Fixed keys under which client state is persisted locally.
const (
	TokenStorageKey = "diagramdesigner_token"
	AuthStorageKey  = "diagramdesigner-auth"
)

// LocalStorage is a small persistent key/value store for client-held state
// (the bearer token and the persisted auth slice).
type LocalStorage interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases underlying resources.
	Close() error
}

// Sealer protects values at rest. Seal and Open must round-trip.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}
