package schema

// HarvestComicTable represents the 'harvest.comic' table
type HarvestComicTable struct {
	Table         string
	ID            string
	Identify      string
	Slug          string
	Author        string
	Title         string
	Description   string
	Thumb         string
	Tags          string
	TotalPages    string
	TotalEpisodes string
	Kind          string
	CreatedAt     string
}

// HarvestComic is the schema definition for harvest.comic
var HarvestComic = HarvestComicTable{
	Table:         "harvest.comic",
	ID:            "id",
	Identify:      "identify",
	Slug:          "slug",
	Author:        "author",
	Title:         "title",
	Description:   "description",
	Thumb:         "thumb",
	Tags:          "tags",
	TotalPages:    "totalpages",
	TotalEpisodes: "totalepisodes",
	Kind:          "kind",
	CreatedAt:     "createdat",
}

// InsertColumns lists the columns written on insert, in bind order.
func (t HarvestComicTable) InsertColumns() []string {
	return []string{
		t.ID, t.Identify, t.Slug, t.Author, t.Title, t.Description,
		t.Thumb, t.Tags, t.TotalPages, t.TotalEpisodes, t.Kind,
	}
}
