package health

// CatalogChecker reports whether the catalog loaded and how many collections
// it carries.
type CatalogChecker interface {
	CollectionCount() int
}
