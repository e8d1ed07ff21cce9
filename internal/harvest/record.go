// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"time"

	"github.com/taibuivan/yomira-harvester/internal/catalog"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	"github.com/taibuivan/yomira-harvester/pkg/slice"
	"github.com/taibuivan/yomira-harvester/pkg/slug"
	"github.com/taibuivan/yomira-harvester/pkg/uuid"
)

// Record is the persisted form of one catalog item, keyed by Identify.
// Records are written once and never updated.
type Record struct {
	ID            string
	Identify      string
	Slug          string
	Author        string
	Title         string
	Description   string
	Thumb         string
	Tags          []string
	TotalPages    int
	TotalEpisodes int
	Kind          string
	Episodes      []RecordEpisode
}

// RecordEpisode is one persisted episode of a [Record].
type RecordEpisode struct {
	ID        string
	Identify  string
	Title     string
	Order     int
	UpdatedAt *time.Time
	Pages     []string
}

// Mapper turns an [Assembled] item into a [Record].
type Mapper struct {
	// StripTag is removed from every tag set (the catalog-wide category tag).
	StripTag string
	// Kind is stored on every record.
	Kind string
}

// Map builds the persisted shape. Detail attributes win over listing ones,
// and empty author or description become an explicit placeholder.
func (mapper Mapper) Map(assembled *Assembled) *Record {
	comic, detail := assembled.Comic, assembled.Detail

	title := firstNonEmpty(detail.Title, comic.Title)

	tags := slice.Filter(detail.Tags, func(tag string) bool { return tag != mapper.StripTag })
	if tags == nil {
		tags = []string{}
	}

	record := &Record{
		ID:            uuid.New(),
		Identify:      comic.ID,
		Slug:          slug.FromOr(title, comic.ID),
		Author:        placeholder(firstNonEmpty(detail.Author, comic.Author)),
		Title:         title,
		Description:   placeholder(detail.Description),
		Thumb:         firstNonEmpty(detail.Thumb.Path, comic.Thumb.Path),
		Tags:          tags,
		TotalPages:    firstNonZero(detail.PagesCount, comic.PagesCount),
		TotalEpisodes: firstNonZero(detail.EpsCount, comic.EpsCount),
		Kind:          mapper.Kind,
		Episodes:      make([]RecordEpisode, 0, len(assembled.Episodes)),
	}

	for _, episode := range assembled.Episodes {
		pages := slice.Map(episode.Pages, func(page catalog.PageRef) string { return page.Media.Path })
		if pages == nil {
			pages = []string{}
		}

		record.Episodes = append(record.Episodes, RecordEpisode{
			ID:        uuid.New(),
			Identify:  episode.ID,
			Title:     episode.Title,
			Order:     episode.Order,
			UpdatedAt: parseTimestamp(episode.UpdatedAt),
			Pages:     pages,
		})
	}

	return record
}

func placeholder(value string) string {
	if value == "" {
		return constants.MissingTextPlaceholder
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}
