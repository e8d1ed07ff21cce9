// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-harvester/internal/catalog"
	"github.com/taibuivan/yomira-harvester/internal/harvest"
	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
)

/*
TestAssemble_SortsEpisodesByOrder verifies canonical order for arbitrary
arrival orders spread over several listing pages.
*/
func TestAssemble_SortsEpisodesByOrder(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for run := 0; run < 25; run++ {
		orders := random.Perm(9)
		source := newFakeSource(1)

		var pages [][]catalog.Episode
		for start := 0; start < len(orders); start += 4 {
			var page []catalog.Episode
			for _, order := range orders[start:min(start+4, len(orders))] {
				page = append(page, catalog.Episode{ID: string(rune('a' + order)), Order: order + 1})
			}
			pages = append(pages, page)
		}
		source.episodes["c1"] = pages

		assembled, err := harvest.NewAssembler(source).Assemble(context.Background(), catalog.Comic{ID: "c1"})
		require.NoError(t, err)
		require.Len(t, assembled.Episodes, 9)

		for i := 1; i < len(assembled.Episodes); i++ {
			assert.Less(t, assembled.Episodes[i-1].Order, assembled.Episodes[i].Order)
		}
	}
}

/*
TestAssemble_DropsRepeatedEpisodes verifies an episode repeated across
listing pages appears once.
*/
func TestAssemble_DropsRepeatedEpisodes(t *testing.T) {
	source := newFakeSource(1)
	source.episodes["c1"] = [][]catalog.Episode{
		{{ID: "e3", Order: 3}, {ID: "e2", Order: 2}},
		{{ID: "e2", Order: 2}, {ID: "e1", Order: 1}},
	}

	assembled, err := harvest.NewAssembler(source).Assemble(context.Background(), catalog.Comic{ID: "c1"})
	require.NoError(t, err)

	var ids []string
	for _, episode := range assembled.Episodes {
		ids = append(ids, episode.ID)
	}
	assert.Equal(t, []string{"e1", "e2", "e3"}, ids)
}

/*
TestAssemble_CollectsAllContentPages verifies multi-page content listings are
concatenated in fetch order and addressed by episode order.
*/
func TestAssemble_CollectsAllContentPages(t *testing.T) {
	source := newFakeSource(1)
	source.episodes["c1"] = [][]catalog.Episode{{{ID: "e7", Order: 7}}}
	source.contents["c1"] = map[int][][]catalog.PageRef{
		7: {
			{{ID: "p1", Media: catalog.Media{Path: "1.jpg"}}, {ID: "p2", Media: catalog.Media{Path: "2.jpg"}}},
			{{ID: "p3", Media: catalog.Media{Path: "3.jpg"}}},
		},
	}

	assembled, err := harvest.NewAssembler(source).Assemble(context.Background(), catalog.Comic{ID: "c1"})
	require.NoError(t, err)
	require.Len(t, assembled.Episodes, 1)

	var paths []string
	for _, page := range assembled.Episodes[0].Pages {
		paths = append(paths, page.Media.Path)
	}
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg"}, paths)
	assert.Equal(t, []string{"pages:c1:7:1", "pages:c1:7:2"}, source.CallsWithPrefix("pages:"))
}

/*
TestAssemble_FailureReturnsNothing verifies a failed nested fetch yields an
assembly error and no partial record.
*/
func TestAssemble_FailureReturnsNothing(t *testing.T) {
	source := newFakeSource(1)
	cause := apperr.Transport("comic_detail", errors.New("timeout"))
	source.failDetail["c1"] = cause

	assembled, err := harvest.NewAssembler(source).Assemble(context.Background(), catalog.Comic{ID: "c1"})
	require.Error(t, err)
	assert.Nil(t, assembled)
	assert.Equal(t, apperr.KindAssembly, apperr.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

/*
TestAssemble_FatalCauseStaysFatal verifies auth failures survive wrapping.
*/
func TestAssemble_FatalCauseStaysFatal(t *testing.T) {
	source := newFakeSource(1)
	source.failDetail["c1"] = apperr.AuthFailed(errors.New("rejected"))

	_, err := harvest.NewAssembler(source).Assemble(context.Background(), catalog.Comic{ID: "c1"})
	require.Error(t, err)
	assert.True(t, apperr.IsFatal(err))
}
