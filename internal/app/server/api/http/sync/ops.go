package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) runOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/reporting/sync",
		Summary:     "Run a sync now",
		Description: "Fetches every provider, persists the result and returns the fresh snapshot",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
