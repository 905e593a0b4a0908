package share

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) issueOp() huma.Operation {
	return huma.Operation{
		OperationID: "issue-share-link",
		Method:      http.MethodPost,
		Path:        "/api/v1/share",
		Summary:     "Issue a share link",
		Description: "Signs a link that scopes its holder to one customer",
		Tags:        []string{"share"},
		Middlewares: h.admin,
	}
}

func (h *Handler) verifyOp() huma.Operation {
	return huma.Operation{
		OperationID: "verify-share-link",
		Method:      http.MethodGet,
		Path:        "/api/v1/share/{token}",
		Summary:     "Verify a share token",
		Tags:        []string{"share"},
		Middlewares: h.public,
	}
}
