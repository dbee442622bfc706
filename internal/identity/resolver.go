package identity

import (
	"fmt"
	"regexp"
	"strings"

	"ircstat/internal/models"
	"ircstat/internal/providers"
	"ircstat/internal/structures"
)

const (
	canonicalPrefix = "canon:"
	ignorePrefix    = "ign:"
)

type ResolverInterface interface {
	Canonical(nick string) string
	IsBot(nick string) bool
	IsBotEvent(e *models.Event) bool
	IsIgnored(nick string) bool
}

type aliasRule struct {
	re        *regexp.Regexp
	canonical string
}

// Resolver maps raw nicks to the identity stats are keyed by. It is built
// once from the config and never changes afterwards.
type Resolver struct {
	aliases []aliasRule
	ignore  []*regexp.Regexp
	bots    map[string]struct{}
	cache   providers.CacheProviderInterface
}

// fullMatch anchors pattern so that it has to match the whole nick.
func fullMatch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

func NewResolver(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) (*Resolver, error) {
	r := &Resolver{
		aliases: make([]aliasRule, 0, len(conf.Identity.Aliases)),
		ignore:  make([]*regexp.Regexp, 0, len(conf.Identity.Ignore)),
		bots:    make(map[string]struct{}, len(conf.Identity.Bots)),
		cache:   cache,
	}

	for i, rule := range conf.Identity.Aliases {
		re, err := fullMatch(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("identity.aliases[%d]: %w", i, err)
		}
		r.aliases = append(r.aliases, aliasRule{re: re, canonical: strings.ToLower(rule.Canonical)})
	}

	// A replacement that another rule rewrites would make Canonical depend
	// on how many times it is applied.
	for i, rule := range r.aliases {
		if got := r.resolve(rule.canonical); got != rule.canonical {
			return nil, fmt.Errorf("identity.aliases[%d]: canonical %q is rewritten to %q by another rule", i, rule.canonical, got)
		}
	}

	for i, pattern := range conf.Identity.Ignore {
		re, err := fullMatch(pattern)
		if err != nil {
			return nil, fmt.Errorf("identity.ignore[%d]: %w", i, err)
		}
		r.ignore = append(r.ignore, re)
	}

	// Bot names are matched as configured; alias rules only apply to the
	// nick being tested.
	for _, bot := range conf.Identity.Bots {
		r.bots[strings.ToLower(bot)] = struct{}{}
	}

	logger.Debugf(providers.TypeIdentity, "Resolver ready: %d alias rules, %d ignore patterns, %d bots",
		len(r.aliases), len(r.ignore), len(r.bots))

	return r, nil
}

func (r *Resolver) resolve(nick string) string {
	lower := strings.ToLower(nick)
	for _, rule := range r.aliases {
		if rule.re.MatchString(lower) {
			return rule.canonical
		}
	}
	return lower
}

// Canonical lower-cases nick and returns the replacement of the first alias
// rule, in declaration order, that matches all of it.
func (r *Resolver) Canonical(nick string) string {
	key := canonicalPrefix + nick
	if val, ok := r.cache.Get(key); ok {
		return string(val)
	}
	canonical := r.resolve(nick)
	r.cache.Set(key, []byte(canonical))
	return canonical
}

func (r *Resolver) IsBot(nick string) bool {
	_, ok := r.bots[r.Canonical(nick)]
	return ok
}

func (r *Resolver) IsBotEvent(e *models.Event) bool {
	if e == nil {
		return false
	}
	return r.IsBot(e.Nick)
}

// IsIgnored expects an already canonical nick.
func (r *Resolver) IsIgnored(nick string) bool {
	if len(r.ignore) == 0 {
		return false
	}
	key := ignorePrefix + nick
	if val, ok := r.cache.Get(key); ok && len(val) == 1 {
		return val[0] == 1
	}

	ignored := false
	for _, re := range r.ignore {
		if re.MatchString(nick) {
			ignored = true
			break
		}
	}

	flag := []byte{0}
	if ignored {
		flag[0] = 1
	}
	r.cache.Set(key, flag)
	return ignored
}
