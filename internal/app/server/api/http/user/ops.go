package user

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) loginOp() huma.Operation {
	return huma.Operation{
		OperationID: "user-login",
		Method:      http.MethodPost,
		Path:        "/api/v1/user/login",
		Summary:     "Log in",
		Description: "Exchanges credentials for a bearer session token",
		Tags:        []string{"users"},
		Middlewares: h.public,
	}
}

func (h *Handler) meOp() huma.Operation {
	return huma.Operation{
		OperationID: "user-me",
		Method:      http.MethodGet,
		Path:        "/api/v1/user/me",
		Summary:     "Current principal",
		Tags:        []string{"users"},
		Middlewares: h.protected,
	}
}
