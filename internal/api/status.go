// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/taibuivan/yomira-harvester/internal/harvest"
	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-harvester/internal/platform/respond"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Scanner harvest.Status `json:"scanner"`
	Records *int64         `json:"records,omitempty"`
	NextRun *time.Time     `json:"next_run,omitempty"`
}

type statusHandler struct {
	deps Dependencies
}

// status handles GET /status.
func (handler *statusHandler) status(writer http.ResponseWriter, request *http.Request) {
	response := StatusResponse{Scanner: handler.deps.Scanner.Status()}

	if handler.deps.Records != nil {
		count, err := handler.deps.Records.Count(request.Context())
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		response.Records = &count
	}

	if handler.deps.NextRun != nil {
		if next := handler.deps.NextRun(); !next.IsZero() {
			response.NextRun = &next
		}
	}

	respond.OK(writer, response)
}

// trigger handles POST /sweep. A 202 means the sweep has started.
func (handler *statusHandler) trigger(writer http.ResponseWriter, request *http.Request) {
	if err := handler.deps.Trigger(); err != nil {
		if errors.Is(err, harvest.ErrSweepInProgress) {
			err = apperr.Conflict("a sweep is already running", err)
		}
		respond.Error(writer, request, err)
		return
	}

	ctxutil.GetLogger(request.Context()).Info("sweep_triggered_manually")
	respond.Status(writer, http.StatusAccepted, map[string]string{"status": "accepted"})
}
