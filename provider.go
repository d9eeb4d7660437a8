package maildraft

// Provider identifies a language-model vendor.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"

	// ProviderStub answers every call locally without a remote service.
	ProviderStub Provider = "stub"
)

// ParseProvider resolves a configured provider name.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderStub:
		return p, true
	}
	return "", false
}
