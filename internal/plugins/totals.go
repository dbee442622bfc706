package plugins

import (
	"fmt"

	"ircstat/internal/graphs"
	"ircstat/internal/models"
)

// TotalsPlugin counts events by kind.
type TotalsPlugin struct{}

func NewTotalsPlugin(_ Deps) Plugin {
	return &TotalsPlugin{}
}

func (p *TotalsPlugin) Name() string {
	return NameOf(p)
}

func (p *TotalsPlugin) ProcessMessage(scope *models.Scope, e *models.Event) error {
	if e == nil {
		return fmt.Errorf("nil event")
	}
	scope.IncShared(e.Nick, models.Deltas{e.Kind.String(): 1})
	return nil
}

func (p *TotalsPlugin) Graphs() []graphs.Request {
	kinds := make([]string, 0, len(models.EventKinds))
	for _, k := range models.EventKinds {
		kinds = append(kinds, k.String())
	}
	return []graphs.Request{
		graphs.KeyComparison("Message Types", graphs.StylePie, kinds...),
		graphs.UserComparison("Chatterboxes", models.KindMessage.String(), 10),
		graphs.ChannelKeysOverTime("Messages per Day", "", graphs.Daily, models.KindMessage.String()),
		graphs.ChannelUserRanking("Chatterboxes per Channel", "", models.KindMessage.String(), 5),
	}
}
