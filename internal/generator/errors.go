package generator

import "errors"

var (
	// ErrConnection is returned when the database session cannot be established
	ErrConnection = errors.New("database connection failed")
	// ErrIntrospection is returned when a catalog query fails
	ErrIntrospection = errors.New("introspection query failed")
	// ErrModel is returned when catalog rows cannot be normalized
	ErrModel = errors.New("invalid table structure")
	// ErrUnsupportedChildKind is returned for child kinds without a registered generator
	ErrUnsupportedChildKind = errors.New("child type is not supported yet")
	// ErrArtifactWrite is returned when a migration file cannot be written
	ErrArtifactWrite = errors.New("failed to write migration")
)
