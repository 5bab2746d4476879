package secret

// SecretStore is where connection passwords live. SQLite holds every other
// connection field; the password never touches it. The macOS Keychain backs
// the real app, and anything satisfying this interface can stand in for it.
type SecretStore interface {
	// Set stores value under key, overwriting any previous value.
	Set(key string, value []byte) error

	// Get returns the value for key, or (nil, nil) when absent.
	Get(key string) ([]byte, error)

	// Delete removes key's value; removing an absent key is not an error.
	Delete(key string) error
}
