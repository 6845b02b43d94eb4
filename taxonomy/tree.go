package taxonomy

import (
	"context"
	"strings"

	"github.com/weddingcard/card_admin/models"
)

type TreeSource interface {
	CategoryTree(ctx context.Context) ([]models.CategoryTreeRecord, error)
}

// Tree is the denormalized category listing. Its leaves are subcategory
// display names; ids sit in a parallel list that older backends omit.
type Tree []models.CategoryTreeRecord

func LoadTree(ctx context.Context, src TreeSource) (Tree, error) {
	records, err := src.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	return Tree(records), nil
}

// ResolveSubcategoryName finds the chain of a subcategory by display name.
// knownID fills the leaf when the record carries no subcategory ids.
//
// Names are not unique across parents. When the name matches more than one
// chain the lookup fails with *AmbiguousNameError instead of picking one.
func (t Tree) ResolveSubcategoryName(name, knownID string) (Path, error) {
	name = strings.TrimSpace(name)
	var candidates []Path
	seen := make(map[Path]bool)

	for _, rec := range t {
		for i, categoryID := range rec.Category {
			if i >= len(rec.Subcategory) {
				break
			}
			for j, subName := range rec.Subcategory[i] {
				if strings.TrimSpace(subName) != name {
					continue
				}
				p := Path{ParentCategoryID: rec.ParentCategoryID, CategoryID: categoryID}
				if i < len(rec.SubcategoryID) && j < len(rec.SubcategoryID[i]) {
					p.SubCategoryID = rec.SubcategoryID[i][j]
				}
				if knownID != "" && p.SubCategoryID != "" && p.SubCategoryID != knownID {
					continue
				}
				if !seen[p] {
					seen[p] = true
					candidates = append(candidates, p)
				}
			}
		}
	}

	switch len(candidates) {
	case 0:
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelSubcategory, ID: name, Ref: name}
	case 1:
	default:
		return Path{}, &AmbiguousNameError{Name: name, Candidates: candidates}
	}

	p := candidates[0]
	if p.SubCategoryID == "" {
		p.SubCategoryID = knownID
	}
	if p.ParentCategoryID == "" {
		return Path{}, &ResolutionError{Level: LevelParentCategory, Entity: LevelSubcategory, ID: name}
	}
	if p.CategoryID == "" {
		return Path{}, &ResolutionError{Level: LevelCategory, Entity: LevelSubcategory, ID: name}
	}
	if p.SubCategoryID == "" {
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelSubcategory, ID: name}
	}
	return p, nil
}
