package request

// TextRequest carries free text for scoring, classification or summarization.
type TextRequest struct {
	Text string `json:"text"`
}

// CredentialRequest stores an API token for a provider.
type CredentialRequest struct {
	Token string `json:"token"`
}
