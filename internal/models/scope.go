package models

import "time"

// Scope is the set of stat nodes an event of one conversation is folded into.
// Plugins only write through it.
type Scope struct {
	Network *NetworkStat
	Channel *ChannelStat
	Day     *BucketStat
	Week    *BucketStat
	Month   *BucketStat
	Date    time.Time
	Name    string
}

// NewScope materializes the channel and its day, week and month buckets for
// the conversation of channel on date.
func NewScope(network *NetworkStat, channel string, date time.Time) *Scope {
	ch := network.Channel(channel)
	return &Scope{
		Network: network,
		Channel: ch,
		Day:     ch.Day(date),
		Week:    ch.WeekOf(date),
		Month:   ch.MonthOf(date),
		Date:    DateOf(date),
		Name:    channel,
	}
}

func (s *Scope) users() [5]userSet {
	return [5]userSet{
		s.Network.userSet,
		s.Channel.userSet,
		s.Day.userSet,
		s.Week.userSet,
		s.Month.userSet,
	}
}

func (s *Scope) bags() [5]*Counters {
	return [5]*Counters{
		s.Network.Stats,
		s.Channel.Stats,
		s.Day.Stats,
		s.Week.Stats,
		s.Month.Stats,
	}
}

// IncUser applies deltas to the user bag of nick at every level.
func (s *Scope) IncUser(nick string, deltas Deltas) {
	if len(deltas) == 0 {
		return
	}
	for _, us := range s.users() {
		us.User(nick).Stats.Add(deltas)
	}
}

// IncAggregate applies deltas to the non-user bag at every level.
func (s *Scope) IncAggregate(deltas Deltas) {
	if len(deltas) == 0 {
		return
	}
	for _, bag := range s.bags() {
		bag.Add(deltas)
	}
}

func (s *Scope) IncShared(nick string, deltas Deltas) {
	s.IncUser(nick, deltas)
	s.IncAggregate(deltas)
}
