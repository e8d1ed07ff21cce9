// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog is the paged fetch client for the remote comic catalog.

Every operation returns exactly one remote page, reflects the current remote
state (nothing is cached) and surfaces transport failures to the caller
without retrying. The only retry is the auth recovery path:

	request -> 401 -> Credentials.Refresh -> same request once more

A refresh that fails, or a second 401 with a fresh credential, is returned as
a fatal [apperr.AuthFailed] since nothing useful can happen without a session.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/pkg/pagination"
)

// Endpoint labels used in logs, metrics and errors.
const (
	EndpointComics       = "comics"
	EndpointComicDetail  = "comic_detail"
	EndpointEpisodes     = "episodes"
	EndpointEpisodePages = "episode_pages"
	EndpointSignIn       = "sign_in"
)

// Credentials supplies the bearer credential used by [Client].
type Credentials interface {
	// Token returns the current credential, obtaining one if needed.
	Token(ctx context.Context) (string, error)
	// Refresh discards the current credential and obtains a new one.
	Refresh(ctx context.Context) (string, error)
}

// Client fetches single pages of the remote catalog.
type Client struct {
	transport   *transport
	credentials Credentials
	category    string
	sort        string
}

// NewClient builds a [Client] that authenticates through credentials.
func NewClient(options Options, credentials Credentials) (*Client, error) {
	if credentials == nil {
		return nil, errors.New("catalog: credentials are required")
	}

	t, err := newTransport(options)
	if err != nil {
		return nil, err
	}

	return &Client{
		transport:   t,
		credentials: credentials,
		category:    options.Category,
		sort:        options.Sort,
	}, nil
}

// # Operations

// Comics fetches one page of the configured category listing.
func (client *Client) Comics(ctx context.Context, page int) (pagination.Page[Comic], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pagination.Normalize(page)))
	if client.category != "" {
		query.Set("c", client.category)
	}
	if client.sort != "" {
		query.Set("s", client.sort)
	}

	var data comicsData
	if err := client.get(ctx, EndpointComics, "comics", query, &data); err != nil {
		return pagination.Page[Comic]{}, err
	}
	return data.Comics, nil
}

// ComicDetail fetches the extended attributes of one comic.
func (client *Client) ComicDetail(ctx context.Context, comicID string) (*ComicDetail, error) {
	var data comicData
	if err := client.get(ctx, EndpointComicDetail, "comics/"+url.PathEscape(comicID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Comic, nil
}

// Episodes fetches one page of a comic's episode listing. The listing is not
// guaranteed to be sorted by order.
func (client *Client) Episodes(ctx context.Context, comicID string, page int) (pagination.Page[Episode], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pagination.Normalize(page)))

	var data episodesData
	path := fmt.Sprintf("comics/%s/eps", url.PathEscape(comicID))
	if err := client.get(ctx, EndpointEpisodes, path, query, &data); err != nil {
		return pagination.Page[Episode]{}, err
	}
	return data.Eps, nil
}

// EpisodePages fetches one page of an episode's content pages. The episode
// is addressed by its order, not by its id.
func (client *Client) EpisodePages(ctx context.Context, comicID string, order, page int) (pagination.Page[PageRef], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pagination.Normalize(page)))

	var data pagesData
	path := fmt.Sprintf("comics/%s/order/%d/pages", url.PathEscape(comicID), order)
	if err := client.get(ctx, EndpointEpisodePages, path, query, &data); err != nil {
		return pagination.Page[PageRef]{}, err
	}
	return data.Pages, nil
}

// # Auth Recovery

// get performs an authorized GET, refreshing the credential once on 401.
func (client *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	token, err := client.credentials.Token(ctx)
	if err != nil {
		return asAuthFailure(err)
	}

	err = client.transport.call(ctx, endpoint, http.MethodGet, path, query, nil, token, out)
	if !IsUnauthorized(err) {
		return err
	}

	client.transport.logger.Info("catalog_credential_rejected", "endpoint", endpoint)

	token, err = client.credentials.Refresh(ctx)
	if err != nil {
		return asAuthFailure(err)
	}

	err = client.transport.call(ctx, endpoint, http.MethodGet, path, query, nil, token, out)
	if IsUnauthorized(err) {
		return apperr.AuthFailed(err)
	}
	return err
}

// IsUnauthorized reports whether err is a recoverable credential rejection.
func IsUnauthorized(err error) bool {
	ae := apperr.As(err)
	return ae != nil && ae.Kind == apperr.KindAuth && !ae.Fatal
}

func asAuthFailure(err error) error {
	if apperr.IsFatal(err) {
		return err
	}
	return apperr.AuthFailed(err)
}
