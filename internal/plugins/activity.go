package plugins

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ircstat/internal/graphs"
	"ircstat/internal/identity"
	"ircstat/internal/models"
)

// ActivityPlugin tracks when people talk and how much they write.
type ActivityPlugin struct {
	resolver identity.ResolverInterface
}

func NewActivityPlugin(deps Deps) Plugin {
	return &ActivityPlugin{resolver: deps.Resolver}
}

func (p *ActivityPlugin) Name() string {
	return NameOf(p)
}

func HourKey(hour int) string {
	return fmt.Sprintf("hour_%02d", hour)
}

func (p *ActivityPlugin) ProcessMessage(scope *models.Scope, e *models.Event) error {
	if e == nil {
		return fmt.Errorf("nil event")
	}
	if e.Kind != models.KindMessage && e.Kind != models.KindAction {
		return nil
	}
	if p.resolver != nil && p.resolver.IsBotEvent(e) {
		return nil
	}

	deltas := models.Deltas{HourKey(e.Time.Hour()): 1}
	if words := len(strings.Fields(e.Content)); words > 0 {
		deltas["words"] = words
		deltas["characters"] = utf8.RuneCountInString(e.Content)
	}
	scope.IncShared(e.Nick, deltas)
	return nil
}

func (p *ActivityPlugin) Graphs() []graphs.Request {
	hours := make([]string, 0, 24)
	for h := 0; h < 24; h++ {
		hours = append(hours, HourKey(h))
	}
	return []graphs.Request{
		graphs.KeyComparison("Activity by Hour", graphs.StyleBar, hours...),
		graphs.UserComparison("Wordsmiths", "words", 10),
		graphs.KeysOverTime("Words per Week", graphs.Weekly, "words", "characters"),
	}
}
