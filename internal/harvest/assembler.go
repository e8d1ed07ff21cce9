// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/taibuivan/yomira-harvester/internal/catalog"
	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-harvester/pkg/pagination"
	"github.com/taibuivan/yomira-harvester/pkg/slice"
)

// Source is the remote catalog as seen by the harvester.
// [*catalog.Client] is the production implementation.
type Source interface {
	Comics(ctx context.Context, page int) (pagination.Page[catalog.Comic], error)
	ComicDetail(ctx context.Context, comicID string) (*catalog.ComicDetail, error)
	Episodes(ctx context.Context, comicID string, page int) (pagination.Page[catalog.Episode], error)
	EpisodePages(ctx context.Context, comicID string, order, page int) (pagination.Page[catalog.PageRef], error)
}

// Assembled is one catalog item with its detail and every episode and page.
// It lives only for the acquisition of that item.
type Assembled struct {
	Comic    catalog.Comic
	Detail   catalog.ComicDetail
	Episodes []AssembledEpisode
}

// AssembledEpisode is an episode with its content pages in fetch order.
type AssembledEpisode struct {
	catalog.Episode
	Pages []catalog.PageRef
}

// Assembler walks the nested pagination of one item.
type Assembler struct {
	source Source
}

// NewAssembler creates an [Assembler] reading from source.
func NewAssembler(source Source) *Assembler {
	return &Assembler{source: source}
}

/*
Assemble builds the complete record of one catalog item.

Steps, strictly sequential:
 1. Fetch the item detail.
 2. Collect every episode page. The listing is not sorted.
 3. Drop duplicate episodes and sort by order ascending.
 4. For each episode in that order, collect its content pages, addressing
    the episode by its order value.

Any failure discards everything collected so far and is returned as an
[apperr.Assembly] error.
*/
func (assembler *Assembler) Assemble(ctx context.Context, comic catalog.Comic) (*Assembled, error) {
	logger := ctxutil.GetLogger(ctx).With(slog.String("comic_id", comic.ID))

	detail, err := assembler.source.ComicDetail(ctx, comic.ID)
	if err != nil {
		return nil, apperr.Assembly(comic.ID, err)
	}

	episodes, err := pagination.Collect(ctx, func(ctx context.Context, page int) (pagination.Page[catalog.Episode], error) {
		return assembler.source.Episodes(ctx, comic.ID, page)
	})
	if err != nil {
		return nil, apperr.Assembly(comic.ID, err)
	}

	// A listing that shifts between pages can repeat an episode.
	episodes = slice.UniqueBy(episodes, func(episode catalog.Episode) string { return episode.ID })
	slices.SortStableFunc(episodes, func(a, b catalog.Episode) int { return cmp.Compare(a.Order, b.Order) })

	assembled := &Assembled{
		Comic:    comic,
		Detail:   *detail,
		Episodes: make([]AssembledEpisode, 0, len(episodes)),
	}

	for _, episode := range episodes {
		pages, err := pagination.Collect(ctx, func(ctx context.Context, page int) (pagination.Page[catalog.PageRef], error) {
			return assembler.source.EpisodePages(ctx, comic.ID, episode.Order, page)
		})
		if err != nil {
			return nil, apperr.Assembly(comic.ID, err)
		}

		assembled.Episodes = append(assembled.Episodes, AssembledEpisode{Episode: episode, Pages: pages})
	}

	logger.Debug("item_assembled",
		slog.Int("episodes", len(assembled.Episodes)),
	)

	return assembled, nil
}
