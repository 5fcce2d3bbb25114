package port

// SessionStore is a key-value store holding serialized session values
type SessionStore interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string)
	RemoveItem(key string)
}
