package models

import (
	"fmt"
	"time"
)

// SnapshotVersion is bumped whenever the report layout changes incompatibly.
const SnapshotVersion = 1

type BucketSnapshot struct {
	Stats map[string]int            `json:"stats"`
	Users map[string]map[string]int `json:"users,omitempty"`
}

type ChannelSnapshot struct {
	Stats  map[string]int             `json:"stats"`
	Users  map[string]map[string]int  `json:"users,omitempty"`
	Days   map[string]*BucketSnapshot `json:"days,omitempty"`
	Weeks  map[string]*BucketSnapshot `json:"weeks,omitempty"`
	Months map[string]*BucketSnapshot `json:"months,omitempty"`
}

type NetworkSnapshot struct {
	Stats    map[string]int              `json:"stats"`
	Users    map[string]map[string]int   `json:"users,omitempty"`
	Channels map[string]*ChannelSnapshot `json:"channels,omitempty"`
}

func (us userSet) snapshotUsers() map[string]map[string]int {
	users := us.Users()
	if len(users) == 0 {
		return nil
	}
	out := make(map[string]map[string]int, len(users))
	for nick, u := range users {
		out[nick] = u.Stats.GetData()
	}
	return out
}

func (us userSet) restoreUsers(users map[string]map[string]int) {
	for nick, data := range users {
		us.User(nick).Stats.PutData(data)
	}
}

func (b *BucketStat) Snapshot() *BucketSnapshot {
	return &BucketSnapshot{
		Stats: b.Stats.GetData(),
		Users: b.snapshotUsers(),
	}
}

func snapshotBuckets(buckets map[time.Time]*BucketStat) map[string]*BucketSnapshot {
	if len(buckets) == 0 {
		return nil
	}
	out := make(map[string]*BucketSnapshot, len(buckets))
	for d, b := range buckets {
		out[FormatDate(d)] = b.Snapshot()
	}
	return out
}

func (cs *ChannelStat) Snapshot() *ChannelSnapshot {
	return &ChannelSnapshot{
		Stats:  cs.Stats.GetData(),
		Users:  cs.snapshotUsers(),
		Days:   snapshotBuckets(cs.Days()),
		Weeks:  snapshotBuckets(cs.Weeks()),
		Months: snapshotBuckets(cs.Months()),
	}
}

// Snapshot copies the tree into its serialisable form.
func (ns *NetworkStat) Snapshot() *NetworkSnapshot {
	channels := ns.Channels()
	out := &NetworkSnapshot{
		Stats: ns.Stats.GetData(),
		Users: ns.snapshotUsers(),
	}
	if len(channels) > 0 {
		out.Channels = make(map[string]*ChannelSnapshot, len(channels))
		for name, ch := range channels {
			out.Channels[name] = ch.Snapshot()
		}
	}
	return out
}

func restoreBuckets(kind string, buckets map[string]*BucketSnapshot, get func(time.Time) *BucketStat) error {
	for key, snap := range buckets {
		d, err := ParseDate(key)
		if err != nil {
			return fmt.Errorf("%s %q: %w", kind, key, err)
		}
		if snap == nil {
			continue
		}
		b := get(d)
		b.Stats.PutData(snap.Stats)
		b.restoreUsers(snap.Users)
	}
	return nil
}

// NewNetworkStatFromSnapshot rebuilds a tree written by Snapshot. Bucket keys
// are taken as stored, they are not recomputed from the dates.
func NewNetworkStatFromSnapshot(snap *NetworkSnapshot) (*NetworkStat, error) {
	ns := NewNetworkStat()
	if snap == nil {
		return ns, nil
	}
	ns.Stats.PutData(snap.Stats)
	ns.restoreUsers(snap.Users)

	for name, chSnap := range snap.Channels {
		if chSnap == nil {
			continue
		}
		ch := ns.Channel(name)
		ch.Stats.PutData(chSnap.Stats)
		ch.restoreUsers(chSnap.Users)

		if err := restoreBuckets("day", chSnap.Days, ch.days.getOrCreate); err != nil {
			return nil, fmt.Errorf("channel %s: %w", name, err)
		}
		if err := restoreBuckets("week", chSnap.Weeks, ch.weeks.getOrCreate); err != nil {
			return nil, fmt.Errorf("channel %s: %w", name, err)
		}
		if err := restoreBuckets("month", chSnap.Months, ch.months.getOrCreate); err != nil {
			return nil, fmt.Errorf("channel %s: %w", name, err)
		}
	}
	return ns, nil
}
