package models

import (
	"fmt"
	"time"
)

type EventKind int

const (
	KindMessage EventKind = iota
	KindAction
	KindJoin
	KindPart
	KindQuit
)

// EventKinds lists every kind in matching priority order.
var EventKinds = []EventKind{KindMessage, KindAction, KindJoin, KindPart, KindQuit}

var kindNames = map[EventKind]string{
	KindMessage: "message",
	KindAction:  "action",
	KindJoin:    "join",
	KindPart:    "part",
	KindQuit:    "quit",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one classified log line. It is never modified after the parser
// builds it.
type Event struct {
	Kind     EventKind
	Time     time.Time
	Nick     string
	Content  string
	Reason   string
	Hostmask string
}

// HasContent reports whether the event carries message text.
func (e *Event) HasContent() bool {
	return (e.Kind == KindMessage || e.Kind == KindAction) && e.Content != ""
}

func (e *Event) String() string {
	return fmt.Sprintf("%s %s <%s> %q", e.Time.Format("15:04:05"), e.Kind, e.Nick, e.Content)
}
