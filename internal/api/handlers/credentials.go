package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// CredentialHandler manages stored provider tokens.
type CredentialHandler struct {
	credentialService *service.CredentialService
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(credentialService *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{
		credentialService: credentialService,
	}
}

// Credentials lists the providers with a stored token. Tokens are never returned.
//
// Endpoint: GET /api/credentials
// Response: 200 OK with []model.Credential
// Error: 503 Service Unavailable if no encryption key is configured
func (h *CredentialHandler) Credentials(w http.ResponseWriter, r *http.Request) {
	credentials, err := h.credentialService.ListCredentials(r.Context())
	if err != nil {
		respondServiceError(w, "failed to retrieve credentials", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, credentials)
}

// SetCredential stores or replaces the token of a provider.
//
// Endpoint: PUT /api/credentials/{provider}
// Request: {"token": "..."}
// Response: 204 No Content
// Error: 400 Bad Request if the provider is unknown or the token is blank
// Error: 503 Service Unavailable if no encryption key is configured
func (h *CredentialHandler) SetCredential(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CredentialRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.credentialService.SetCredential(r.Context(), chi.URLParam(r, "provider"), req.Token); err != nil {
		respondServiceError(w, "failed to store credential", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCredential removes the stored token of a provider.
//
// Endpoint: DELETE /api/credentials/{provider}
// Response: 204 No Content
// Error: 404 Not Found if no token is stored
func (h *CredentialHandler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.credentialService.DeleteCredential(r.Context(), chi.URLParam(r, "provider")); err != nil {
		respondServiceError(w, "failed to delete credential", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
