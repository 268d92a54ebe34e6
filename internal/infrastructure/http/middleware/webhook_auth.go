package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/errors"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-assistant/pkg/signature"
)

// WebhookAuthenticator gates provider callbacks on the request signature
type WebhookAuthenticator struct {
	authToken     string
	publicBaseURL string
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewWebhookAuthenticator creates the authenticator. It logs once when the
// signature check cannot be enforced.
func NewWebhookAuthenticator(authToken, publicBaseURL string, m *metrics.Metrics, logger *zap.Logger) *WebhookAuthenticator {
	a := &WebhookAuthenticator{
		authToken:     authToken,
		publicBaseURL: publicBaseURL,
		metrics:       m,
		logger:        logger,
	}

	m.SetSignatureEnforced(a.Configured())
	if !a.Configured() {
		logger.Warn("⚠️  webhook signature validation is NOT enforced; set TWILIO_AUTH_TOKEN and PUBLIC_BASE_URL",
			zap.Bool("auth_token_set", authToken != ""),
			zap.Bool("public_base_url_set", publicBaseURL != ""),
		)
	}
	return a
}

// Configured reports whether both the token and the public base URL are set
func (a *WebhookAuthenticator) Configured() bool {
	return a.authToken != "" && a.publicBaseURL != ""
}

// Verify checks the signature of the current request against its form body
func (a *WebhookAuthenticator) Verify(c echo.Context) signature.Outcome {
	req := c.Request()
	if err := req.ParseForm(); err != nil {
		return signature.OutcomeRejected
	}
	return signature.Verify(
		a.authToken,
		req.Header.Get(signature.HeaderName),
		a.publicBaseURL,
		req.RequestURI,
		req.PostForm,
	)
}

// Middleware rejects callbacks whose signature does not match with 403
func (a *WebhookAuthenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			outcome := a.Verify(c)
			a.metrics.RecordSignatureCheck(string(outcome))

			if !outcome.Accepted() {
				a.logger.Warn("webhook signature rejected",
					zap.String("path", c.Path()),
					zap.String("remote_ip", c.RealIP()),
				)
				return errors.ErrInvalidSignature()
			}
			if outcome == signature.OutcomeBypassed {
				a.logger.Warn("webhook signature check bypassed",
					zap.String("path", c.Path()),
					zap.Bool("configured", a.Configured()),
					zap.Bool("header_present", c.Request().Header.Get(signature.HeaderName) != ""),
				)
			}

			return next(c)
		}
	}
}
