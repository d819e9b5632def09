package types

import (
	"fmt"
	"path"
	"strings"
)

// Category identifies which kind of artifact is stored and therefore which
// directory of a branch object tree receives it. The set is closed.
type Category int

// Artifact categories.
const (
	CategoryMetrics Category = iota + 1
	CategoryImages
	CategoryMisclassification
	CategoryModels
	CategoryCorrelation
)

// Object tree directory names.
const (
	MetricsDir     = "metrics"
	MediaDir       = "media"
	ImagesDir      = "images"
	AnnotationsDir = "annotations"
	ModelsDir      = "models"
	CorrelationDir = "correlation"
)

var categoryTags = map[Category][]string{
	CategoryMetrics:           {"metrics"},
	CategoryImages:            {"media", "images"},
	CategoryMisclassification: {"misclassification"},
	CategoryModels:            {"models"},
	CategoryCorrelation:       {"correlation"},
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryMetrics,
		CategoryImages,
		CategoryMisclassification,
		CategoryModels,
		CategoryCorrelation,
	}
}

// ParseCategory maps a tag path such as ["media", "images"] to its category.
// Unknown combinations return ErrUnknownCategory; there is no default.
func ParseCategory(tags ...string) (Category, error) {
	for _, c := range Categories() {
		if equalTags(categoryTags[c], tags) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, strings.Join(tags, "/"))
}

// ParseCategoryPath is ParseCategory for a slash separated tag path.
func ParseCategoryPath(s string) (Category, error) {
	return ParseCategory(strings.Split(strings.Trim(s, "/"), "/")...)
}

// ResolveCategoryDir maps a tag path straight to its relative directory.
func ResolveCategoryDir(tags ...string) (string, error) {
	c, err := ParseCategory(tags...)
	if err != nil {
		return "", err
	}
	return c.Dir()
}

// Dir returns the category directory relative to a branch object tree,
// using forward slashes.
func (c Category) Dir() (string, error) {
	switch c {
	case CategoryMetrics:
		return MetricsDir, nil
	case CategoryImages:
		return path.Join(MediaDir, ImagesDir), nil
	case CategoryMisclassification:
		return AnnotationsDir, nil
	case CategoryModels:
		return ModelsDir, nil
	case CategoryCorrelation:
		return CorrelationDir, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
}

// Tags returns the tag path of the category, or nil when unknown.
func (c Category) Tags() []string {
	tags, ok := categoryTags[c]
	if !ok {
		return nil
	}
	return append([]string(nil), tags...)
}

// Type is the last tag of the category; it is recorded as the meta entry type.
func (c Category) Type() string {
	tags := categoryTags[c]
	if len(tags) == 0 {
		return ""
	}
	return tags[len(tags)-1]
}

func (c Category) String() string {
	tags, ok := categoryTags[c]
	if !ok {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return strings.Join(tags, "/")
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
