package models

import (
	"sort"
	"time"
)

// Conversation is the ordered event history of one channel on one date.
type Conversation struct {
	Channel string
	Date    time.Time
	Source  string
	Events  []*Event
}

func NewConversation(channel string, date time.Time, source string, events []*Event) *Conversation {
	return &Conversation{
		Channel: channel,
		Date:    DateOf(date),
		Source:  source,
		Events:  events,
	}
}

// ConversationSet indexes conversations by channel, then date.
type ConversationSet map[string]map[time.Time]*Conversation

// Put stores c, replacing any conversation with the same channel and date.
// It returns the replaced one, if any.
func (cs ConversationSet) Put(c *Conversation) *Conversation {
	dates, ok := cs[c.Channel]
	if !ok {
		dates = make(map[time.Time]*Conversation)
		cs[c.Channel] = dates
	}
	prev := dates[c.Date]
	dates[c.Date] = c
	return prev
}

func (cs ConversationSet) Get(channel string, date time.Time) (*Conversation, bool) {
	c, ok := cs[channel][DateOf(date)]
	return c, ok
}

func (cs ConversationSet) Channels() []string {
	channels := make([]string, 0, len(cs))
	for ch := range cs {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

func (cs ConversationSet) Dates(channel string) []time.Time {
	dates := make([]time.Time, 0, len(cs[channel]))
	for d := range cs[channel] {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// Len counts conversations across all channels.
func (cs ConversationSet) Len() int {
	n := 0
	for _, dates := range cs {
		n += len(dates)
	}
	return n
}

func (cs ConversationSet) EventCount() int {
	n := 0
	for _, dates := range cs {
		for _, c := range dates {
			n += len(c.Events)
		}
	}
	return n
}
