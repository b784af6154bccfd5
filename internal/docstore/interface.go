package docstore

// MutateFunc receives the current decoded document (nil when the document
// does not exist) and returns the full document to write back. Returning an
// error aborts the mutation without writing anything.
type MutateFunc func(current map[string]any) (map[string]any, error)

// Store defines the interface for the keyed document store.
type Store interface {
	Get(path string) (Doc, error)
	Set(path string, value map[string]any) error
	Update(path string, value map[string]any) error
	Delete(path string) error
	Mutate(path string, fn MutateFunc) (Doc, error)
	Query(collection string) *Query
}
