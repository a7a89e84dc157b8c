package catalog

// Category is one entry of the fixed client-side category list.
type Category struct {
	ID   int
	Name string
	Slug string
}

// Categories is the fixed category list maintained client-side. The backend
// stores category ids only; names and slugs shown in navigation come from
// this table.
var Categories = []Category{
	{ID: 1, Name: "Wall Art", Slug: "wall-art"},
	{ID: 2, Name: "Calligraphy Frames", Slug: "calligraphy-frames"},
	{ID: 3, Name: "Prayer Rugs", Slug: "prayer-rugs"},
	{ID: 4, Name: "Lanterns", Slug: "lanterns"},
	{ID: 5, Name: "Tasbih & Accessories", Slug: "tasbih-accessories"},
	{ID: 6, Name: "Quran Stands", Slug: "quran-stands"},
	{ID: 7, Name: "Home Fragrance", Slug: "home-fragrance"},
	{ID: 8, Name: "Gift Sets", Slug: "gift-sets"},
}

// CategoryByID looks up a category in the fixed list.
func CategoryByID(id int) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryBySlug looks up a category by its URL slug.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}
