package models

import (
	"sort"
	"time"
)

type UserStat struct {
	Stats *Counters
}

func NewUserStat() *UserStat {
	return &UserStat{Stats: NewCounters()}
}

// userSet is the users collection shared by every level of the tree.
type userSet struct {
	users *nodeMap[string, UserStat]
}

func newUserSet() userSet {
	return userSet{users: newNodeMap[string, UserStat](NewUserStat)}
}

// User returns the stat of nick, creating it on first touch.
func (us userSet) User(nick string) *UserStat {
	return us.users.getOrCreate(nick)
}

func (us userSet) LookupUser(nick string) (*UserStat, bool) {
	return us.users.get(nick)
}

func (us userSet) Users() map[string]*UserStat {
	return us.users.snapshot()
}

func (us userSet) UserNames() []string {
	return sortedKeys(us.users.snapshot())
}

func (us userSet) UsersLen() int {
	return us.users.len()
}

// BucketStat is a day, week or month of one channel.
type BucketStat struct {
	userSet
	Stats *Counters
}

func NewBucketStat() *BucketStat {
	return &BucketStat{
		userSet: newUserSet(),
		Stats:   NewCounters(),
	}
}

type ChannelStat struct {
	userSet
	Stats  *Counters
	days   *nodeMap[time.Time, BucketStat]
	weeks  *nodeMap[time.Time, BucketStat]
	months *nodeMap[time.Time, BucketStat]
}

func NewChannelStat() *ChannelStat {
	return &ChannelStat{
		userSet: newUserSet(),
		Stats:   NewCounters(),
		days:    newNodeMap[time.Time, BucketStat](NewBucketStat),
		weeks:   newNodeMap[time.Time, BucketStat](NewBucketStat),
		months:  newNodeMap[time.Time, BucketStat](NewBucketStat),
	}
}

// Day returns the bucket of date d.
func (cs *ChannelStat) Day(d time.Time) *BucketStat {
	return cs.days.getOrCreate(DateOf(d))
}

// WeekOf returns the bucket of the week containing d, keyed by Week(d).
func (cs *ChannelStat) WeekOf(d time.Time) *BucketStat {
	return cs.weeks.getOrCreate(Week(d))
}

// MonthOf returns the bucket of the month containing d, keyed by Month(d).
func (cs *ChannelStat) MonthOf(d time.Time) *BucketStat {
	return cs.months.getOrCreate(Month(d))
}

func (cs *ChannelStat) LookupDay(d time.Time) (*BucketStat, bool) {
	return cs.days.get(DateOf(d))
}

func (cs *ChannelStat) LookupWeek(key time.Time) (*BucketStat, bool) {
	return cs.weeks.get(DateOf(key))
}

func (cs *ChannelStat) LookupMonth(key time.Time) (*BucketStat, bool) {
	return cs.months.get(DateOf(key))
}

func (cs *ChannelStat) Days() map[time.Time]*BucketStat {
	return cs.days.snapshot()
}

func (cs *ChannelStat) Weeks() map[time.Time]*BucketStat {
	return cs.weeks.snapshot()
}

func (cs *ChannelStat) Months() map[time.Time]*BucketStat {
	return cs.months.snapshot()
}

// NetworkStat is the root of one plugin's stat tree.
type NetworkStat struct {
	userSet
	Stats    *Counters
	channels *nodeMap[string, ChannelStat]
}

func NewNetworkStat() *NetworkStat {
	return &NetworkStat{
		userSet:  newUserSet(),
		Stats:    NewCounters(),
		channels: newNodeMap[string, ChannelStat](NewChannelStat),
	}
}

func (ns *NetworkStat) Channel(name string) *ChannelStat {
	return ns.channels.getOrCreate(name)
}

func (ns *NetworkStat) LookupChannel(name string) (*ChannelStat, bool) {
	return ns.channels.get(name)
}

func (ns *NetworkStat) Channels() map[string]*ChannelStat {
	return ns.channels.snapshot()
}

func (ns *NetworkStat) ChannelNames() []string {
	return sortedKeys(ns.channels.snapshot())
}

// SortedDates orders bucket keys ascending.
func SortedDates[V any](m map[time.Time]V) []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}
