// Package categories merges the flat category lists returned by content
// sources into a fixed two-level taxonomy.
//
// Reconcile is a pure function over (input, Taxonomy); storage of the result
// is done by internal/database/categories.
package categories

import "github.com/mrlokans/storyhub/internal/entities"

// AllTypeID is the id of the synthetic "All" category.
const AllTypeID = 0

// Taxonomy is the predefined category tree plus the table used to resolve
// parent names found in "parent/child" style category names.
type Taxonomy struct {
	All      entities.Category
	TopLevel []entities.Category
	Children []entities.Category

	// ParentAliases maps a parent display name (including synonyms) to a top-level id.
	ParentAliases map[string]int
}

// DefaultTaxonomy returns the built-in video taxonomy.
// A fresh copy is returned so callers may mutate it.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		All: cat(AllTypeID, "全部", 0),
		TopLevel: []entities.Category{
			cat(1, "电影", 0),
			cat(2, "电视剧", 0),
			cat(3, "动漫", 0),
			cat(4, "综艺", 0),
		},
		Children: []entities.Category{
			cat(101, "动作片", 1),
			cat(102, "喜剧片", 1),
			cat(103, "爱情片", 1),
			cat(104, "科幻片", 1),
			cat(105, "恐怖片", 1),
			cat(106, "剧情片", 1),

			cat(201, "国产剧", 2),
			cat(202, "港台剧", 2),
			cat(203, "日韩剧", 2),
			cat(204, "欧美剧", 2),

			cat(301, "国产动漫", 3),
			cat(302, "日本动漫", 3),
			cat(303, "欧美动漫", 3),

			cat(401, "大陆综艺", 4),
			cat(402, "港台综艺", 4),
			cat(403, "日韩综艺", 4),
			cat(404, "欧美综艺", 4),
		},
		ParentAliases: map[string]int{
			"电影":  1,
			"电视剧": 2,
			"连续剧": 2,
			"动漫":  3,
			"综艺":  4,
		},
	}
}

// Seed returns the rows every non-empty reconciliation starts from:
// "All" followed by the top-level categories.
func (t Taxonomy) Seed() []entities.Category {
	seed := make([]entities.Category, 0, len(t.TopLevel)+1)
	seed = append(seed, t.All)
	seed = append(seed, t.TopLevel...)
	return seed
}

// Flatten returns the whole predefined tree: the seed followed by all children.
func (t Taxonomy) Flatten() []entities.Category {
	out := t.Seed()
	return append(out, t.Children...)
}

// ResolveParent looks up a parent display name in the alias table.
func (t Taxonomy) ResolveParent(name string) (int, bool) {
	id, ok := t.ParentAliases[name]
	return id, ok
}

func cat(id int, name string, parent int) entities.Category {
	return entities.Category{TypeID: id, TypeName: name, ParentTypeID: parent}
}
