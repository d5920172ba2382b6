package cache

// Cache is the interface implemented by inventory cache backends.
type Cache[T any] interface {
	CreateIfNotExists(path string) error
	Insert(path string, data ...T) error
	Delete(path string, data ...T) error
	Get(path string) ([]T, error)
}
