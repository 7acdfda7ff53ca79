// Package i18n renders structured karma results into localized user-facing
// text. The engine itself never formats strings; this is the rendering
// collaborator sitting at the reply boundary.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/lasombra/rebot/internal/domain"
)

// supported lists the reply locales, best-match order. English is the
// fallback for anything unrecognized.
var supported = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

type catalog struct {
	selfTarget string
	suppressed string
	applied    string
}

// catalogs is indexed in lockstep with supported.
var catalogs = []catalog{
	{
		selfTarget: "you cannot give karma to yourself!",
		suppressed: "ease up, %s is still at %d points of karma",
		applied:    "%s has now %d points of karma",
	},
	{
		selfTarget: "você não pode dar karma a si mesmo!",
		suppressed: "calma, %s ainda tem %d pontos de karma",
		applied:    "%s agora tem %d pontos de karma",
	},
}

// Renderer negotiates a reply locale and formats results.
type Renderer struct {
	matcher language.Matcher
}

func NewRenderer() *Renderer {
	return &Renderer{matcher: language.NewMatcher(supported)}
}

// Render formats result for the given BCP 47 locale ("en", "pt-BR", ...).
// Unrecognized locales fall back to English. A no-match result renders to
// the empty string: the bot stays silent on ordinary chatter.
func (r *Renderer) Render(result domain.Result, locale string) string {
	_, index := language.MatchStrings(r.matcher, locale)
	messages := catalogs[index]

	switch result.Outcome {
	case domain.OutcomeSelfTarget:
		return messages.selfTarget
	case domain.OutcomeSuppressed:
		return fmt.Sprintf(messages.suppressed, result.Target, result.Score)
	case domain.OutcomeApplied:
		return fmt.Sprintf(messages.applied, result.Target, result.Score)
	default:
		return ""
	}
}
