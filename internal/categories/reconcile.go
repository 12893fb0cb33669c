package categories

import (
	"strings"

	"github.com/mrlokans/storyhub/internal/entities"
)

const pathSeparator = "/"

// Reconcile merges raw source categories into the taxonomy.
//
// An empty input yields the predefined tree. Otherwise the result starts with
// the seed rows and each input is handled in order:
//   - "parent/child" names are re-parented through the alias table; unknown
//     parents are dropped.
//   - plain names are kept unless an earlier plain name in the same input
//     already had that display name.
//
// Namespace and Position are not set here; the repository assigns them.
func Reconcile(input []entities.Category, taxonomy Taxonomy) []entities.Category {
	if len(input) == 0 {
		return taxonomy.Flatten()
	}

	result := taxonomy.Seed()
	seenPlain := make(map[string]struct{})

	for _, c := range input {
		parts := strings.Split(c.TypeName, pathSeparator)

		if len(parts) >= 2 {
			parentID, ok := taxonomy.ResolveParent(parts[0])
			if !ok {
				continue
			}
			result = append(result, entities.Category{
				TypeID:       c.TypeID,
				TypeName:     parts[1],
				ParentTypeID: parentID,
			})
			continue
		}

		if _, dup := seenPlain[c.TypeName]; dup {
			continue
		}
		seenPlain[c.TypeName] = struct{}{}
		result = append(result, entities.Category{
			TypeID:       c.TypeID,
			TypeName:     c.TypeName,
			ParentTypeID: c.ParentTypeID,
		})
	}

	return result
}

// TopLevel returns the categories without a parent, in input order.
func TopLevel(cats []entities.Category) []entities.Category {
	out := make([]entities.Category, 0)
	for _, c := range cats {
		if c.IsTopLevel() {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOf returns the categories whose parent is parentID, in input order.
func ChildrenOf(cats []entities.Category, parentID int) []entities.Category {
	out := make([]entities.Category, 0)
	if parentID == 0 {
		return out
	}
	for _, c := range cats {
		if c.ParentTypeID == parentID {
			out = append(out, c)
		}
	}
	return out
}
