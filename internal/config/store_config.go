package config

// StoreConfig selects where tokens and installations are kept.
type StoreConfig interface {
	GetStoreBackend() string
	GetValkeyAddress() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() string {
	return GetEnv("STORE_BACKEND", "memory")
}

func (Store) GetValkeyAddress() string {
	return GetEnv("VALKEY_ADDRESS", "127.0.0.1:6379")
}
