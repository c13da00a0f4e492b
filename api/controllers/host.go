package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	"github.com/angelmondragon/jewelry-miniapp/api/validators"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/telegram"
)

// Host is the WebApp container state the bridge updates.
type Host interface {
	SetInitData(raw string) error
	MarkReady()
	IsReady() bool
	IsTelegram() bool
	User() *telegram.User
}

type hostReadyRequest struct {
	InitData string `json:"init_data" validate:"max=4096"`
}

type hostState struct {
	Ready      bool           `json:"ready"`
	IsTelegram bool           `json:"is_telegram"`
	User       *telegram.User `json:"user,omitempty"`
}

// HostReady is called by the WebView after Telegram.WebApp.ready(). It may
// hand over init data, then releases the startup cart sync.
func HostReady(host Host, botToken string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if host == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "host unavailable"))
			return
		}

		var payload hostReadyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(payload.InitData); raw != "" {
			if botToken != "" {
				if err := telegram.Validate(raw, botToken); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid init data"))
					return
				}
			}
			if err := host.SetInitData(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid init data"))
				return
			}
		}

		host.MarkReady()

		ctx := r.Context()
		if logg != nil {
			if user := host.User(); user != nil {
				ctx = logg.WithTelegramUserID(ctx, user.ID)
			}
			logg.Info(ctx, "host ready")
		}

		responses.WriteSuccess(w, hostState{Ready: host.IsReady(), IsTelegram: host.IsTelegram(), User: host.User()})
	}
}

// HostState reports readiness and the launching user.
func HostState(host Host, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if host == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "host unavailable"))
			return
		}
		responses.WriteSuccess(w, hostState{Ready: host.IsReady(), IsTelegram: host.IsTelegram(), User: host.User()})
	}
}
