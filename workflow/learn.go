package workflow

import (
	"context"
	"strconv"

	ai "github.com/spetersoncode/maildraft"
)

// Edit tendencies recorded in the profile.
const (
	TendencyShorter = "shorter"
	TendencyLonger  = "longer"
	TendencySimilar = "similar"
)

// EditPreferences derives profile preferences from a user's edit: the
// edited word count as the preferred length, and whether the user tends
// to shorten or lengthen drafts.
func EditPreferences(original, edited string) map[string]string {
	before, after := ai.WordCount(original), ai.WordCount(edited)
	tendency := TendencySimilar
	switch {
	case before == 0:
	case float64(after) < 0.9*float64(before):
		tendency = TendencyShorter
	case float64(after) > 1.1*float64(before):
		tendency = TendencyLonger
	}
	prefs := map[string]string{PrefEditTendency: tendency}
	if after > 0 {
		prefs[PrefPreferredLength] = strconv.Itoa(after)
	}
	return prefs
}

// learnFromEdit stores the preferences of an edit in the user's profile.
func (r *Router) learnFromEdit(ctx context.Context, req ai.RegenerationRequest) {
	if !r.learn || req.UserID == "" || r.orch.opts.Profiles == nil {
		return
	}
	update := ai.ProfileUpdate{Preferences: EditPreferences(req.OriginalDraft, req.EditedDraft)}
	if _, err := r.orch.opts.Profiles.Update(ctx, req.UserID, update); err != nil {
		r.orch.opts.Logger.Warn("learning from edit failed", "user_id", req.UserID, "error", err)
	}
}
