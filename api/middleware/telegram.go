package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/telegram"
)

// InitDataHeader carries the WebApp init data on bridge requests.
const InitDataHeader = "X-Telegram-Init-Data"

type contextKey string

const ctxTelegramUser contextKey = "telegram_user"

// TelegramPolicy controls how strictly the bridge checks the caller.
type TelegramPolicy struct {
	// BotToken enables signature validation of the header when set.
	BotToken string
	// Require rejects requests that resolve to no Telegram user.
	Require bool
}

// UserSource resolves the launching user when the request carries no header.
type UserSource interface {
	User() *telegram.User
}

// TelegramUserFromContext returns the user resolved by TelegramInitData.
func TelegramUserFromContext(ctx context.Context) *telegram.User {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(ctxTelegramUser).(*telegram.User); ok {
		return u
	}
	return nil
}

// WithTelegramUser injects the user into the context.
func WithTelegramUser(ctx context.Context, user *telegram.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTelegramUser, user)
}

// TelegramInitData resolves the Telegram user from the init data header, or
// from the host when the header is absent, and seeds the request context.
func TelegramInitData(policy TelegramPolicy, host UserSource, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *telegram.User

			raw := strings.TrimSpace(r.Header.Get(InitDataHeader))
			if raw != "" {
				if policy.BotToken != "" {
					if err := telegram.Validate(raw, policy.BotToken); err != nil {
						responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid init data"))
						return
					}
				}
				parsed, err := telegram.ParseInitData(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid init data"))
					return
				}
				user = parsed.User
			} else if host != nil {
				user = host.User()
			}

			if user == nil && policy.Require {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "telegram user required"))
				return
			}

			ctx := r.Context()
			if user != nil {
				ctx = WithTelegramUser(ctx, user)
				if logg != nil {
					ctx = logg.WithTelegramUserID(ctx, user.ID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
