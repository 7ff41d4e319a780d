package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Wartem/llm-chat-lite/pkg/proxy"
	"github.com/Wartem/llm-chat-lite/pkg/theme"
)

// ThemeResponse is the body of the theme endpoints. Success and Error are
// only set by POST.
type ThemeResponse struct {
	Success    *bool  `json:"success,omitempty"`
	Theme      string `json:"theme,omitempty"`
	Stylesheet string `json:"stylesheet,omitempty"`
	Error      string `json:"error,omitempty"`
}

// GetThemeHandler returns the current theme and its stylesheet path.
func GetThemeHandler(store ThemeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteJSONResponse(w, http.StatusOK, ThemeResponse{
			Theme:      store.Current(),
			Stylesheet: store.Stylesheet(),
		})
	}
}

// SetThemeHandler switches the theme to the {name} path value.
func SetThemeHandler(store ThemeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		if err := store.Set(name); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, theme.ErrUnknownTheme) {
				status = http.StatusBadRequest
			} else {
				slog.ErrorContext(r.Context(), "failed to save theme", "theme", name, "error", err)
			}
			failed := false
			_ = proxy.WriteJSONResponse(w, status, ThemeResponse{Success: &failed, Error: err.Error()})
			return
		}

		ok := true
		_ = proxy.WriteJSONResponse(w, http.StatusOK, ThemeResponse{Success: &ok, Theme: name, Stylesheet: store.Stylesheet()})
	}
}
