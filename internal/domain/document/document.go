package document

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/qbm25/internal/domain"
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	reservedIDs = map[string]bool{"batch": true, "search": true}
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxAttributes caps the number of unit/value pairs per document.
const MaxAttributes = 256

// Document is a searchable text with positionally aligned unit/value attributes.
type Document struct {
	id      string
	content string
	units   []string
	values  []string
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars, not reserved. Content: non-empty, max 160KB.
// Units and values must have equal length; every value must be a finite number.
func New(id, content string, units, values []string) (Document, error) {
	if err := validateID(id); err != nil {
		return Document{}, err
	}
	if content == "" {
		return Document{}, invalid("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, invalid("content too large (max %d bytes)", MaxContentSize)
	}
	if len(units) != len(values) {
		return Document{}, invalid("units and values length mismatch (%d != %d)", len(units), len(values))
	}
	if len(units) > MaxAttributes {
		return Document{}, invalid("too many attributes (max %d)", MaxAttributes)
	}

	u := make([]string, len(units))
	for i, unit := range units {
		unit = strings.TrimSpace(unit)
		if unit == "" {
			return Document{}, invalid("units[%d] is empty", i)
		}
		// the stored list form is bracketed, quoted and comma separated
		if strings.ContainsAny(unit, "[],'\"") {
			return Document{}, invalid("units[%d] %q contains a reserved character", i, unit)
		}
		u[i] = unit
	}

	v := make([]string, len(values))
	for i, raw := range values {
		raw = strings.TrimSpace(raw)
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Document{}, invalid("values[%d] %q is not a finite number", i, raw)
		}
		v[i] = raw
	}

	if len(u) == 0 {
		u, v = nil, nil
	}
	return Document{id: id, content: content, units: u, values: v}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, content string, units, values []string) Document {
	return Document{id: id, content: content, units: units, values: values}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Units returns the attribute units.
func (d *Document) Units() []string { return slices.Clone(d.units) }

// Values returns the attribute values in their textual form, aligned with Units.
func (d *Document) Values() []string { return slices.Clone(d.values) }

// ValidateID checks a document identifier without building a Document.
func ValidateID(id string) error { return validateID(id) }

func validateID(id string) error {
	if id == "" {
		return invalid("document ID is required")
	}
	if len(id) > 256 {
		return invalid("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return invalid("document ID must be alphanumeric with underscores and hyphens")
	}
	if reservedIDs[id] {
		return invalid("document ID %q is reserved", id)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrInvalidDocument)
}
