// Package maildraft turns short natural-language requests into polished
// email drafts.
//
// The root package holds the domain vocabulary shared by every other
// package: requests and results, tones and intents, sender profiles, the
// [Generator] contract of the language-model service and the error
// taxonomy.
//
// The pipeline itself lives in [github.com/spetersoncode/maildraft/workflow],
// which runs seven ordered stages (parse, detect intent, write, style tone,
// personalize, review, refine) over a request and decides how to handle
// hand-edited drafts through its regeneration router.
//
// # Basic Usage
//
//	c := client.New(client.Config{
//	    Provider: maildraft.ProviderAnthropic,
//	    APIKeys:  client.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//
//	orch := workflow.New(c, workflow.WithHistory(store.NewMemoryHistory(0)))
//	result, err := orch.Run(ctx, maildraft.DraftRequest{
//	    Prompt: "Follow up with Sarah about the Q3 report deadline",
//	    UserID: "u-1",
//	    Tone:   maildraft.ToneFormal,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Draft)
//
// # Errors
//
// Only [ValidationError] and [ServiceError] reach callers as failures.
// Everything else degrades into a successful [DraftResult] whose metadata and
// review notes describe what went wrong.
package maildraft
