package taxonomy

import (
	"fmt"
	"net/url"
	"strings"
)

// Level names one step of the parent category -> category -> subcategory -> type chain.
type Level int

const (
	LevelParentCategory Level = iota + 1
	LevelCategory
	LevelSubcategory
	LevelType
)

func (l Level) String() string {
	switch l {
	case LevelParentCategory:
		return "parent category"
	case LevelCategory:
		return "category"
	case LevelSubcategory:
		return "subcategory"
	case LevelType:
		return "type"
	default:
		return "unknown"
	}
}

// Path is the resolved ancestor chain of a taxonomy entity. Ids below the
// entity's own level are empty.
type Path struct {
	ParentCategoryID string `json:"parentCategoryId"`
	CategoryID       string `json:"categoryId,omitempty"`
	SubCategoryID    string `json:"subCategoryId,omitempty"`
	TypeID           string `json:"typeId,omitempty"`
}

// Leaf is the deepest level set on the path.
func (p Path) Leaf() Level {
	switch {
	case p.TypeID != "":
		return LevelType
	case p.SubCategoryID != "":
		return LevelSubcategory
	case p.CategoryID != "":
		return LevelCategory
	case p.ParentCategoryID != "":
		return LevelParentCategory
	}
	return 0
}

// IDs lists the ancestors outermost first, ending at the leaf's own id.
func (p Path) IDs() []string {
	ids := make([]string, 0, 4)
	for _, id := range []string{p.ParentCategoryID, p.CategoryID, p.SubCategoryID, p.TypeID} {
		if id == "" {
			break
		}
		ids = append(ids, id)
	}
	return ids
}

func (p Path) String() string {
	return strings.Join(p.IDs(), "/")
}

const ParentCategoryCollectionURL = "/api/parent-category"

func (p Path) ParentCategoryURL() string {
	return ParentCategoryCollectionURL + "/" + url.PathEscape(p.ParentCategoryID)
}

func (p Path) CategoryCollectionURL() string {
	return p.ParentCategoryURL() + "/category"
}

func (p Path) CategoryURL() string {
	return p.CategoryCollectionURL() + "/" + url.PathEscape(p.CategoryID)
}

func (p Path) SubcategoryCollectionURL() string {
	return p.CategoryURL() + "/sub-category"
}

func (p Path) SubcategoryURL() string {
	return p.SubcategoryCollectionURL() + "/" + url.PathEscape(p.SubCategoryID)
}

func (p Path) TypeCollectionURL() string {
	return p.SubcategoryURL() + "/type"
}

func (p Path) TypeURL() string {
	return p.TypeCollectionURL() + "/" + url.PathEscape(p.TypeID)
}

// ResolutionError reports a broken link in the taxonomy chain. Level is the
// missing step, Entity and ID name the record whose chain was being walked,
// Ref is the dangling id when one was present.
type ResolutionError struct {
	Level  Level
	Entity Level
	ID     string
	Ref    string
}

func (e *ResolutionError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s %q: %s %q not found", e.Entity, e.ID, e.Level, e.Ref)
	}
	return fmt.Sprintf("%s %q: missing %s", e.Entity, e.ID, e.Level)
}

// AmbiguousNameError is returned by the name lookup when the same
// subcategory name appears under more than one chain.
type AmbiguousNameError struct {
	Name       string
	Candidates []Path
}

func (e *AmbiguousNameError) Error() string {
	chains := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		chains[i] = c.String()
	}
	return fmt.Sprintf("subcategory name %q is ambiguous: %s", e.Name, strings.Join(chains, ", "))
}
