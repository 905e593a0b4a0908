package dashboard

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) customersOp() huma.Operation {
	return huma.Operation{
		OperationID: "list-dashboard-customers",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/customers",
		Summary:     "Customer dashboard",
		Description: "Per-customer device counts and health scores",
		Tags:        []string{"dashboard"},
		Middlewares: h.middleware,
	}
}
