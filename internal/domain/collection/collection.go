package collection

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/qbm25/internal/domain"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxNameLength bounds collection names so derived Redis keys stay short.
const MaxNameLength = 64

// Collection groups documents under one full-text index.
type Collection struct {
	name      string
	createdAt int64
}

// IsValidName reports whether name can be used as a collection identifier.
func IsValidName(name string) bool {
	return ValidateName(name) == nil
}

// ValidateName checks name against ^[a-zA-Z0-9_-]+$, 1-64 chars.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required: %w", domain.ErrInvalidRequest)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("collection name too long (max %d): %w", MaxNameLength, domain.ErrInvalidRequest)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf(
			"collection name must be alphanumeric with underscores and hyphens: %w", domain.ErrInvalidRequest,
		)
	}
	return nil
}

// New validates and creates a Collection stamped with the current time.
func New(name string) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	return Collection{name: name, createdAt: time.Now().UnixMilli()}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(name string, createdAt int64) Collection {
	return Collection{name: name, createdAt: createdAt}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }
