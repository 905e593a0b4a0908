package reporting

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const prefix = "/api/v1/reporting/"

func (h *Handler) listOp(id, path, summary string) huma.Operation {
	return huma.Operation{
		OperationID: id,
		Method:      http.MethodGet,
		Path:        prefix + path,
		Summary:     summary,
		Tags:        []string{"reporting"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deviceExtraOp() huma.Operation {
	return huma.Operation{
		OperationID: "get-device-extra",
		Method:      http.MethodGet,
		Path:        prefix + "devices/{deviceID}/extras/{kind}",
		Summary:     "Per-device dataset",
		Description: "Returns the stored payload of one dataset, or an empty object",
		Tags:        []string{"reporting"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) siteAgentlessOp() huma.Operation {
	return huma.Operation{
		OperationID: "list-site-agentless",
		Method:      http.MethodGet,
		Path:        prefix + "sites/{siteID}/agentless-assets",
		Summary:     "Agentless assets of one site",
		Tags:        []string{"reporting"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) antivirusOp() huma.Operation {
	return huma.Operation{
		OperationID: "list-antivirus-products",
		Method:      http.MethodGet,
		Path:        prefix + "antivirus-products",
		Summary:     "Supported antivirus products",
		Tags:        []string{"reporting"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) summaryOp() huma.Operation {
	return huma.Operation{
		OperationID: "get-summary",
		Method:      http.MethodGet,
		Path:        prefix + "summary",
		Summary:     "Dashboard summary counts",
		Tags:        []string{"reporting", "dashboard"},
		Middlewares: h.middleware,
	}
}
