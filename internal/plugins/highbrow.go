package plugins

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ircstat/internal/graphs"
	"ircstat/internal/identity"
	"ircstat/internal/models"
)

var swearPatterns = map[string]string{
	"ass":  `ass(es|hole)?`,
	"crap": `crap(s|py|ped)?`,
	"shit": `shits?`,
	"fuck": `fuck(s?|ing|ed)?`,
	"damn": `(god)?damn(n?it|ed)?`,
	"hell": `hell`,
}

var phrasePatterns = map[string]string{
	"lol":     `(lol|l\.o\.l)`,
	"rofl":    `rofl`,
	"haha":    `(ha|(ha|he)(ha|he)*)`,
	"nice":    `^nice$`,
	"hi":      `hi`,
	"howdy":   `howdy`,
	"morning": `morning`,
}

type wordCounter struct {
	key string
	re  *regexp.Regexp
}

func compileWords(patterns map[string]string) []wordCounter {
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	counters := make([]wordCounter, 0, len(keys))
	for _, k := range keys {
		counters = append(counters, wordCounter{
			key: k,
			re:  regexp.MustCompile(`\b` + patterns[k] + `\b`),
		})
	}
	return counters
}

// count adds the number of matches of every counter to deltas and returns
// the sum. Words that do not occur are left out.
func count(counters []wordCounter, content string, deltas models.Deltas) int {
	total := 0
	for _, wc := range counters {
		if n := len(wc.re.FindAllStringIndex(content, -1)); n > 0 {
			deltas[wc.key] = n
			total += n
		}
	}
	return total
}

// HighbrowPlugin measures how refined the conversation is: swears and stock
// phrases per user.
type HighbrowPlugin struct {
	resolver identity.ResolverInterface
	swears   []wordCounter
	phrases  []wordCounter
}

func NewHighbrowPlugin(deps Deps) Plugin {
	return &HighbrowPlugin{
		resolver: deps.Resolver,
		swears:   compileWords(swearPatterns),
		phrases:  compileWords(phrasePatterns),
	}
}

func (p *HighbrowPlugin) Name() string {
	return NameOf(p)
}

func (p *HighbrowPlugin) ProcessMessage(scope *models.Scope, e *models.Event) error {
	if e == nil {
		return fmt.Errorf("nil event")
	}
	if !e.HasContent() || (p.resolver != nil && p.resolver.IsBotEvent(e)) {
		return nil
	}

	content := strings.ToLower(e.Content)

	swears := models.Deltas{}
	if total := count(p.swears, content, swears); total > 0 {
		swears["total_swears"] = total
		scope.IncShared(e.Nick, swears)
	}

	phrases := models.Deltas{}
	if total := count(p.phrases, content, phrases); total > 0 {
		phrases["total_phrases"] = total
		scope.IncShared(e.Nick, phrases)
	}
	return nil
}

func (p *HighbrowPlugin) Graphs() []graphs.Request {
	return []graphs.Request{
		graphs.KeyComparison("Swears Used", graphs.StyleBar, keysOf(p.swears)...),
		graphs.UserComparison("Potty Mouths", "total_swears", 0),
		graphs.KeyComparison("Phrases Used", graphs.StyleBar, keysOf(p.phrases)...),
		graphs.UserComparison("Broken Records", "total_phrases", 0),
	}
}

func keysOf(counters []wordCounter) []string {
	keys := make([]string, 0, len(counters))
	for _, wc := range counters {
		keys = append(keys, wc.key)
	}
	return keys
}
