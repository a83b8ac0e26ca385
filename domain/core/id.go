package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ReaderID identifies a reader in the cohort
type ReaderID ID

func (id ReaderID) String() string { return ID(id).String() }

// ParseReaderID parses a string into ReaderID
func ParseReaderID(s string) (ReaderID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("reader ID cannot be empty")
	}
	return ReaderID(s), nil
}
