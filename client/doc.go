// Package client provides the language-model service used by the drafting
// pipeline.
//
// A [Client] routes every call to one configured vendor and adds:
//
//   - Lazy provider construction: the vendor SDK is created on first use
//   - Bounded retries: exponential backoff for transient failures
//   - Per-attempt timeouts: a hung call becomes a transient timeout
//   - Failure classification: every error wraps exactly one of
//     [maildraft.ErrRateLimited], [maildraft.ErrUnavailable] or
//     [maildraft.ErrTimeout]
//   - Event emission: observable calls and retries via channel
//
// # Basic Usage
//
//	c := client.New(client.Config{
//	    Provider: maildraft.ProviderAnthropic,
//	    APIKeys:  client.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//
//	gen, err := c.Generate(ctx, maildraft.GenerateRequest{
//	    Task:   "write_draft",
//	    System: "You write business email.",
//	    Prompt: "Thank Sam for the demo.",
//	})
//
// # Stub
//
// [Stub] answers every call locally, echoing the request's Input. It keeps
// the pipeline usable without credentials and makes runs deterministic in
// tests:
//
//	c := client.New(client.Config{Provider: maildraft.ProviderStub})
//
// # Events
//
// Pass a channel in Config.Events to observe calls. Events are sent without
// blocking; if the channel is full they are dropped.
//
//	events := make(chan client.Event, 100)
//	c := client.New(client.Config{Provider: maildraft.ProviderOpenAI, Events: events})
//	go func() {
//	    for e := range events {
//	        log.Printf("%s %s %v", e.Type, e.Task, e.Duration)
//	    }
//	}()
package client
