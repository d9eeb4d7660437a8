package workflow

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	ai "github.com/spetersoncode/maildraft"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)|\n+`)

	closingLine = regexp.MustCompile(`^(?i)(best regards|kind regards|warm regards|warmest regards|regards|sincerely|sincerely yours|yours sincerely|yours truly|best|best wishes|all the best|thanks|thank you|many thanks|cheers|respectfully|warmly|warm wishes|take care|with understanding|looking forward to your response)[,.!]?$`)

	placeholderLine = regexp.MustCompile(`^\[[^\]]+\]$`)

	greetingLine = regexp.MustCompile(`^(?i)(dear|hi|hello|hey|greetings|good morning|good afternoon|good evening)\b`)
)

// sentences splits text into trimmed, non-empty sentences.
func sentences(text string) []string {
	var out []string
	for _, part := range sentenceEnd.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || s == "" {
		return s
	}
	// Keep acronyms such as "Q3" or "CEO" intact.
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) || unicode.IsDigit(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func isClosing(line string) bool {
	return closingLine.MatchString(strings.TrimSpace(line))
}

func hasGreeting(draft string) bool {
	for _, line := range strings.Split(draft, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return greetingLine.MatchString(l)
		}
	}
	return false
}

func hasClosing(draft string) bool {
	for _, line := range strings.Split(draft, "\n") {
		if isClosing(line) {
			return true
		}
	}
	return false
}

// keyTerms returns the fact-bearing words of text: tokens containing a
// digit and capitalized words that do not start a sentence or a line.
func keyTerms(text string) []string {
	seen := map[string]bool{}
	var terms []string
	for _, line := range strings.Split(text, "\n") {
		startOfSentence := true
		for _, raw := range strings.Fields(line) {
			word := strings.TrimFunc(raw, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			wasStart := startOfSentence
			startOfSentence = strings.ContainsAny(raw[len(raw)-1:], ".!?:")
			if word == "" || word == "I" {
				continue
			}
			first, _ := utf8.DecodeRuneInString(word)
			isKey := strings.IndexFunc(word, unicode.IsDigit) >= 0 ||
				(!wasStart && unicode.IsUpper(first))
			if !isKey {
				continue
			}
			k := strings.ToLower(word)
			if !seen[k] {
				seen[k] = true
				terms = append(terms, k)
			}
		}
	}
	return terms
}

// termRetention returns the share of source key terms found in out.
// Sources without key terms retain everything.
func termRetention(source, out string) float64 {
	terms := keyTerms(source)
	if len(terms) == 0 {
		return 1
	}
	lower := strings.ToLower(out)
	kept := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			kept++
		}
	}
	return float64(kept) / float64(len(terms))
}

// ensureSignature leaves exactly one sign-off at the end of draft. Only
// the trailing sign-off is rewritten: a closing phrase keeps its wording
// and gains the sender identity, a custom signature replaces it, and
// identical sign-offs stacked directly above it are dropped. Drafts
// without a sign-off get the profile's signature block appended.
func ensureSignature(draft string, p ai.Profile) string {
	draft = strings.TrimSpace(draft)
	lines := strings.Split(draft, "\n")
	block := strings.Split(p.SignatureBlock(), "\n")

	at := signOffAt(lines, p)
	if at < 0 {
		return draft + "\n\n" + strings.Join(block, "\n")
	}
	opener := strings.TrimSpace(lines[at])

	body := trimBlankTail(lines[:at])
	for {
		prev := signOffAt(body, p)
		if prev < 0 || !strings.EqualFold(strings.TrimSpace(body[prev]), opener) {
			break
		}
		body = trimBlankTail(body[:prev])
	}

	var closing []string
	switch {
	case strings.TrimSpace(p.Signature) != "":
		closing = block
		if isClosing(opener) && !isClosing(block[0]) {
			closing = append([]string{opener}, block...)
		}
	case len(block) > 1 && isClosing(opener):
		closing = append([]string{opener}, block[1:]...)
	case len(block) > 1:
		closing = block
	default:
		// No identity to add; keep the sign-off as written.
		closing = []string{strings.TrimSpace(strings.Join(lines[at:], "\n"))}
	}

	if len(body) == 0 {
		return strings.Join(closing, "\n")
	}
	return strings.Join(body, "\n") + "\n\n" + strings.Join(closing, "\n")
}

// signOffAt returns the index of the line opening the trailing sign-off
// of lines, or -1. It scans up from the end over sign-off lines and stops
// at the first line of body text. A closing phrase wins; failing that the
// topmost line naming the sender or opening the custom signature is used.
func signOffAt(lines []string, p ai.Profile) int {
	opener := strings.TrimSpace(firstLine(p.Signature))
	candidate := -1
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.TrimSpace(lines[i])
		if isClosing(l) {
			return i
		}
		if !isSignOffLine(l, p) {
			break
		}
		if l != "" && (strings.EqualFold(l, opener) || strings.EqualFold(l, p.Name)) {
			candidate = i
		}
	}
	return candidate
}

// isSignOffLine reports whether line may sit below a closing phrase: a
// blank line, a placeholder such as "[Your Name]", one of the sender's
// identity lines, or a few capitalized words.
func isSignOffLine(line string, p ai.Profile) bool {
	l := strings.TrimSpace(line)
	if l == "" || placeholderLine.MatchString(l) {
		return true
	}
	for _, id := range identityLines(p) {
		if strings.EqualFold(l, id) {
			return true
		}
	}
	words := strings.Fields(l)
	if len(words) > 4 || strings.ContainsAny(l[len(l)-1:], "?!:") {
		return false
	}
	for _, w := range words {
		if r, _ := utf8.DecodeRuneInString(w); unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func identityLines(p ai.Profile) []string {
	ids := []string{p.Name, p.Title, p.Company}
	if p.Title != "" && p.Company != "" {
		ids = append(ids, p.Title+", "+p.Company)
	}
	for _, l := range strings.Split(p.Signature, "\n") {
		ids = append(ids, strings.TrimSpace(l))
	}
	return slices.DeleteFunc(ids, func(s string) bool { return s == "" })
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return first
}

func trimBlankTail(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// localCleanup removes repeats of the first closing block, repeated
// consecutive lines and runs of blank lines. A line opening the sender's
// custom signature counts as a closing.
func localCleanup(draft string, p ai.Profile) string {
	opener := strings.TrimSpace(firstLine(p.Signature))

	var kept []string
	var signature []string
	firstClosing := ""
	skippingDuplicate := false
	prev := ""

	for _, line := range strings.Split(draft, "\n") {
		norm := strings.ToLower(strings.TrimSpace(line))

		if skippingDuplicate {
			if norm != "" && containsLine(signature, norm) {
				continue
			}
			skippingDuplicate = false
		}

		if isClosing(line) || (opener != "" && strings.EqualFold(strings.TrimSpace(line), opener)) {
			if firstClosing == norm {
				skippingDuplicate = true
				continue
			}
			if firstClosing == "" {
				firstClosing = norm
			}
		}
		if firstClosing != "" && norm != "" {
			signature = append(signature, norm)
		}

		if norm != "" && norm == prev {
			continue
		}
		if norm == "" && prev == "" && len(kept) > 0 {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
		prev = norm
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func containsLine(lines []string, norm string) bool {
	for _, l := range lines {
		if l == norm {
			return true
		}
	}
	return false
}
