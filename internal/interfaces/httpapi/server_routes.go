package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/formations", handler.ListFormations)
	mux.HandleFunc("GET /v1/matches/{matchID}/roster", handler.GetRoster)
	mux.HandleFunc("POST /v1/matches/{matchID}/roster/retry", handler.RetryRoster)
}

func registerAuthorizedSquadRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/matches/{matchID}/squad", RequireAuth(verifier, http.HandlerFunc(handler.GetSquadState)))
	mux.Handle("PUT /v1/matches/{matchID}/squad/formation", RequireAuth(verifier, http.HandlerFunc(handler.SelectFormation)))
	mux.Handle("PUT /v1/matches/{matchID}/squad/slots/{slotIndex}", RequireAuth(verifier, http.HandlerFunc(handler.AssignPlayer)))
	mux.Handle("DELETE /v1/matches/{matchID}/squad/slots/{slotIndex}", RequireAuth(verifier, http.HandlerFunc(handler.RemovePlayer)))
	mux.Handle("POST /v1/matches/{matchID}/squad/defense", RequireAuth(verifier, http.HandlerFunc(handler.ChooseDefense)))
	mux.Handle("POST /v1/matches/{matchID}/squad/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteSquad)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/lockout-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunLockoutSweep)))
}
