package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// AccountHandler serves the out-of-band credential flows. The two request
// endpoints always answer 202 whether or not the email exists, so they
// cannot be used to enumerate accounts.
type AccountHandler struct {
	AccountService *service.AccountService
}

func (h *AccountHandler) HandleValidateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AccountService.RequestValidation(ctx, req.Email); err != nil {
		log.Error("validation request failed", "err", err)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AccountHandler) HandleValidateConfirm(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ValidationConfirm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AccountService.ConfirmValidation(r.Context(), req.Token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AccountService.RequestReset(ctx, req.Email); err != nil {
		log.Error("reset request failed", "err", err)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AccountHandler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetConfirm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Token == "" || req.NewPassword == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AccountService.ConfirmReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
