package schema

// HarvestEpisodeTable represents the 'harvest.episode' table
type HarvestEpisodeTable struct {
	Table     string
	ID        string
	ComicID   string
	Identify  string
	Title     string
	Ordinal   string
	UpdatedAt string
	Pages     string
}

// HarvestEpisode is the schema definition for harvest.episode
var HarvestEpisode = HarvestEpisodeTable{
	Table:     "harvest.episode",
	ID:        "id",
	ComicID:   "comicid",
	Identify:  "identify",
	Title:     "title",
	Ordinal:   "ordinal",
	UpdatedAt: "updatedat",
	Pages:     "pages",
}

// InsertColumns lists the columns written on insert, in bind order.
func (t HarvestEpisodeTable) InsertColumns() []string {
	return []string{t.ID, t.ComicID, t.Identify, t.Title, t.Ordinal, t.UpdatedAt, t.Pages}
}
