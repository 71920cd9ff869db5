// internal/domain/models/document.go
package models

import "time"

// Document is implemented by every persisted entity. The collection name
// lives on the type so generic repositories can be built from the type alone.
type Document interface {
	CollectionName() string
}

// Creatable is implemented (on the pointer) by entities that fill identity,
// defaults, normalized fields, and timestamps before their first write.
type Creatable interface {
	BeforeCreate(now time.Time)
}
