// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"encoding/json"

	"github.com/taibuivan/yomira-harvester/pkg/pagination"
)

// # Wire Envelope

// envelope is the response wrapper shared by every remote endpoint.
type envelope struct {
	Code    int             `json:"code"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// # Catalog Entities

// Media references a file hosted by the remote catalog.
type Media struct {
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	FileServer   string `json:"fileServer"`
}

// Comic is one entry of the catalog listing.
type Comic struct {
	ID         string   `json:"_id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	PagesCount int      `json:"pagesCount"`
	EpsCount   int      `json:"epsCount"`
	Finished   bool     `json:"finished"`
	Categories []string `json:"categories"`
	Thumb      Media    `json:"thumb"`
	LikesCount int      `json:"likesCount"`
}

// ComicDetail is the extended view returned by the item-detail endpoint.
type ComicDetail struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	ChineseTeam string   `json:"chineseTeam"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	PagesCount  int      `json:"pagesCount"`
	EpsCount    int      `json:"epsCount"`
	Finished    bool     `json:"finished"`
	Thumb       Media    `json:"thumb"`
	UpdatedAt   string   `json:"updated_at"`
	CreatedAt   string   `json:"created_at"`
}

// Episode is one sub-collection of a comic. Order is its canonical sequence
// number and the key used to address its content pages.
type Episode struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	UpdatedAt string `json:"updated_at"`
}

// PageRef is one content page of an episode.
type PageRef struct {
	ID    string `json:"_id"`
	Media Media  `json:"media"`
}

// # Endpoint Payloads

type comicsData struct {
	Comics pagination.Page[Comic] `json:"comics"`
}

type comicData struct {
	Comic ComicDetail `json:"comic"`
}

type episodesData struct {
	Eps pagination.Page[Episode] `json:"eps"`
}

type pagesData struct {
	Pages pagination.Page[PageRef] `json:"pages"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInData struct {
	Token string `json:"token"`
}
