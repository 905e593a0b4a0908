package user

import (
	"context"

	"fleetreport/internal/app/server/api/http/middleware/auth"
	"fleetreport/internal/domain/session"
	"fleetreport/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service   user.Servicer
	session   session.Servicer
	log       *slog.Logger
	public    huma.Middlewares
	protected huma.Middlewares
}

// NewHandler принимает middleware для входа и для профиля аутентифицированного
// пользователя.
func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, public, protected huma.Middlewares) *Handler {
	return &Handler{
		service:   service,
		session:   session,
		log:       log,
		public:    public,
		protected: protected,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.meOp(), h.me)
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		h.log.Info("login rejected", "login", input.Body.Login)
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("failed to create session", "user_id", u.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to create session")
	}

	return &loginOutput{
		Body: LoginResponse{Token: token, Status: "Ok"},
	}, nil
}

func (h *Handler) me(ctx context.Context, _ *meInput) (*meOutput, error) {
	p, ok := auth.GetPrincipal(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	return &meOutput{
		Body: MeResponse{
			ID:         p.UserID,
			Login:      p.Login,
			Admin:      p.Admin,
			CustomerID: p.CustomerID,
		},
	}, nil
}
