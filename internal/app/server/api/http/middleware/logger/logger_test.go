package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestLogger_Middleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success at info", status: http.StatusOK, wantLevel: "level=INFO"},
		{name: "server error at warn", status: http.StatusBadGateway, wantLevel: "level=WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			l := New(slog.New(slog.NewTextHandler(&buf, nil)))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reporting/clients?share_token=secret", nil)
			ctx := humatest.NewContext(&huma.Operation{}, req, httptest.NewRecorder())

			// Act
			l.Middleware()(ctx, func(next huma.Context) {
				next.SetStatus(tt.status)
			})

			// Assert
			out := buf.String()
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, "path=/api/v1/reporting/clients")
			assert.NotContains(t, out, "secret")
		})
	}
}

func TestLogger_Annotate(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, nil)))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reporting/servers", nil)
	ctx := humatest.NewContext(&huma.Operation{OperationID: "list-servers"}, req, httptest.NewRecorder())

	l.Middleware()(ctx, func(next huma.Context) {
		Annotate(next.Context(), slog.String("login", "ops"), slog.String("snapshot_id", "snap-7"))
		next.SetStatus(http.StatusOK)
	})

	out := buf.String()
	assert.Contains(t, out, "operation=list-servers")
	assert.Contains(t, out, "login=ops")
	assert.Contains(t, out, "snapshot_id=snap-7")

	// Вне middleware писать некуда.
	assert.NotPanics(t, func() { Annotate(req.Context(), slog.String("login", "ops")) })
}
