package httpapi

import (
	"net/http"
)

// RunLockoutSweep triggers one auto-fill pass over live matches. Exposed for
// the cron runner; guarded by RequireInternalJobToken at the router.
func (h *Handler) RunLockoutSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunLockoutSweep")
	defer span.End()

	result, err := h.lockoutService.Sweep(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "lockout sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
