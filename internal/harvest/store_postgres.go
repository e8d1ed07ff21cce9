// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-harvester/internal/platform/database/schema"
	"github.com/taibuivan/yomira-harvester/internal/platform/dberr"
)

// PostgresRepository implements [Repository] over the harvest schema.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	existsComicQuery = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.HarvestComic.Table, schema.HarvestComic.Identify,
	)

	insertComicQuery = fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (%s) DO NOTHING
		RETURNING %s
	`,
		schema.HarvestComic.Table,
		strings.Join(schema.HarvestComic.InsertColumns(), ", "),
		placeholders(len(schema.HarvestComic.InsertColumns())),
		schema.HarvestComic.Identify,
		schema.HarvestComic.ID,
	)

	insertEpisodeQuery = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.HarvestEpisode.Table,
		strings.Join(schema.HarvestEpisode.InsertColumns(), ", "),
		placeholders(len(schema.HarvestEpisode.InsertColumns())),
	)

	countComicsQuery = fmt.Sprintf(`SELECT count(*) FROM %s`, schema.HarvestComic.Table)
)

// Exists reports whether a comic with the given identity is stored.
func (repository *PostgresRepository) Exists(context context.Context, identify string) (bool, error) {
	var exists bool
	if err := repository.db.QueryRow(context, existsComicQuery, identify).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "exists_comic")
	}
	return exists, nil
}

/*
Create inserts a comic and its episodes in one transaction.

The comic insert uses ON CONFLICT DO NOTHING on the identity; when it returns
no row the identity already exists and [ErrAlreadyStored] is returned without
writing any episode. Episodes are sent as one batch.
*/
func (repository *PostgresRepository) Create(ctx context.Context, record *Record) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_create_comic")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, insertComicQuery,
		record.ID, record.Identify, record.Slug, record.Author, record.Title, record.Description,
		record.Thumb, record.Tags, record.TotalPages, record.TotalEpisodes, record.Kind,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || dberr.IsUniqueViolation(err) {
		return ErrAlreadyStored
	}
	if err != nil {
		return dberr.Wrap(err, "insert_comic")
	}

	if len(record.Episodes) > 0 {
		batch := &pgx.Batch{}
		for _, episode := range record.Episodes {
			batch.Queue(insertEpisodeQuery,
				episode.ID, id, episode.Identify, episode.Title, episode.Order, episode.UpdatedAt, episode.Pages,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range record.Episodes {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return dberr.Wrap(err, "insert_episode")
			}
		}
		if err := results.Close(); err != nil {
			return dberr.Wrap(err, "insert_episode")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_create_comic")
	}
	return nil
}

// Count returns the number of stored comics.
func (repository *PostgresRepository) Count(context context.Context) (int64, error) {
	var total int64
	if err := repository.db.QueryRow(context, countComicsQuery).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_comics")
	}
	return total, nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
