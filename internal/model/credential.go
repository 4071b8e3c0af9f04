package model

import "time"

// Providers whose API tokens can be stored.
const (
	ProviderNewsAPI     = "newsapi"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

// ValidProviders contains the providers accepted by the credential store.
var ValidProviders = map[string]bool{
	ProviderNewsAPI: true, ProviderHuggingFace: true, ProviderGemini: true,
}

// Credential is a stored provider token. Token holds the fernet ciphertext
// when read from the database and is never serialised.
type Credential struct {
	Provider  string    `json:"provider"`
	Token     string    `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}
