// Package graphs describes the charts a plugin asks the renderer to draw.
// Requests only name data in the stat tree, they carry no data themselves.
package graphs

type Kind string

const (
	NetworkKeyComparison  Kind = "network_key_comparison"
	NetworkUserComparison Kind = "network_user_comparison"
	NetworkKeyOverTime    Kind = "network_key_over_time"
	ChannelKeyOverTime    Kind = "channel_key_over_time"
	ChannelUserComparison Kind = "channel_user_comparison"
)

type Style string

const (
	StyleBar  Style = "bar"
	StyleLine Style = "line"
	StylePie  Style = "pie"
)

// Period selects the bucket series an over-time graph is drawn from.
type Period string

const (
	Daily   Period = "day"
	Weekly  Period = "week"
	Monthly Period = "month"
)

type Request struct {
	Kind    Kind     `json:"kind"`
	Title   string   `json:"title"`
	Style   Style    `json:"style,omitempty"`
	Keys    []string `json:"keys,omitempty"`
	Key     string   `json:"key,omitempty"`
	Channel string   `json:"channel,omitempty"`
	Period  Period   `json:"period,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// KeyComparison compares network totals of keys.
func KeyComparison(title string, style Style, keys ...string) Request {
	return Request{Kind: NetworkKeyComparison, Title: title, Style: style, Keys: keys}
}

// UserComparison ranks users by key across the network.
func UserComparison(title, key string, limit int) Request {
	return Request{Kind: NetworkUserComparison, Title: title, Style: StyleBar, Key: key, Limit: limit}
}

// KeysOverTime plots network totals of keys per period.
func KeysOverTime(title string, period Period, keys ...string) Request {
	return Request{Kind: NetworkKeyOverTime, Title: title, Style: StyleLine, Keys: keys, Period: period}
}

// ChannelKeysOverTime plots keys per period for every channel, or only for
// channel when it is set.
func ChannelKeysOverTime(title, channel string, period Period, keys ...string) Request {
	return Request{Kind: ChannelKeyOverTime, Title: title, Style: StyleLine, Keys: keys, Channel: channel, Period: period}
}

// ChannelUserRanking ranks users by key within every channel, or only within
// channel when it is set.
func ChannelUserRanking(title, channel, key string, limit int) Request {
	return Request{Kind: ChannelUserComparison, Title: title, Style: StyleBar, Key: key, Channel: channel, Limit: limit}
}

// Validate reports whether r names enough to be drawn.
func (r Request) Validate() bool {
	if r.Title == "" {
		return false
	}
	switch r.Kind {
	case NetworkKeyComparison, NetworkKeyOverTime, ChannelKeyOverTime:
		return len(r.Keys) > 0
	case NetworkUserComparison, ChannelUserComparison:
		return r.Key != ""
	default:
		return false
	}
}
