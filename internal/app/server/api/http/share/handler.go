package share

import (
	"context"
	"errors"

	"fleetreport/internal/domain/share"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"
)

type Handler struct {
	issuer   share.Issuer
	verifier share.Verifier
	validate *validator.Validate
	log      *slog.Logger
	admin    huma.Middlewares
	public   huma.Middlewares
}

// NewHandler принимает отдельные middleware для выпуска (только админ) и
// проверки (публично).
func NewHandler(issuer share.Issuer, verifier share.Verifier, log *slog.Logger, admin, public huma.Middlewares) *Handler {
	return &Handler{
		issuer:   issuer,
		verifier: verifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		admin:    admin,
		public:   public,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.issueOp(), h.issue)
	huma.Register(api, h.verifyOp(), h.verify)
}

func (h *Handler) issue(_ context.Context, input *issueInput) (*issueOutput, error) {
	if err := h.validate.Struct(input.Body); err != nil {
		return nil, huma.Error400BadRequest("invalid share request", err)
	}

	days := share.DefaultDays
	if input.Body.ExpiresInDays != nil {
		days = *input.Body.ExpiresInDays
	}

	link, err := h.issuer.Issue(input.Body.CustomerID, days)
	switch {
	case err == nil:
	case errors.Is(err, share.ErrInvalidExpiry), errors.Is(err, share.ErrNoCustomer):
		return nil, huma.Error400BadRequest(err.Error())
	default:
		h.log.Error("failed to issue share link", "error", err)
		return nil, huma.Error500InternalServerError("failed to issue share link")
	}

	h.log.Info("share link issued", "customer_id", input.Body.CustomerID, "days", days)
	return &issueOutput{Body: link}, nil
}

func (h *Handler) verify(_ context.Context, input *verifyInput) (*verifyOutput, error) {
	claims, err := h.verifier.Verify(input.Token)
	if err != nil {
		h.log.Debug("share token rejected", "error", err)
		return nil, huma.Error403Forbidden("invalid or expired share token")
	}
	return &verifyOutput{Body: VerifyResponse{CustomerID: claims.CustomerID, Expires: claims.Expires}}, nil
}
