package parser

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ircstat/internal/models"
	"ircstat/internal/providers"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDiscover_BuildsConversations(t *testing.T) {
	p, metrics, _ := newTestParser(t, parserConfig())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chan1_20130101.log"), "[10:00] <Bob> hi\n[10:01] <bob2> hey\n")
	writeFile(t, filepath.Join(root, "nested", "deeper", "#chan1_20130102.log"), "[11:00] <Bob> again\n[11:05] <bob2> again\n")
	writeFile(t, filepath.Join(root, "chan2_20130101.log"), "[09:00] *** Joins: alice (a@b)\n")
	writeFile(t, filepath.Join(root, "README.txt"), "not a log\n")

	convs, err := p.Discover(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{"chan1", "chan2"}, convs.Channels())
	assert.Equal(t, []time.Time{date(2013, time.January, 1), date(2013, time.January, 2)}, convs.Dates("chan1"))

	c, ok := convs.Get("chan1", date(2013, time.January, 2))
	require.True(t, ok)
	require.Len(t, c.Events, 2)
	assert.Equal(t, "bob", c.Events[0].Nick)
	assert.Equal(t, "bob", c.Events[1].Nick)
	assert.Equal(t, date(2013, time.January, 2).Add(11*time.Hour+5*time.Minute), c.Events[1].Time)

	diag := p.Diagnostics()
	assert.Equal(t, int64(3), diag.FilesParsed)
	assert.Equal(t, int64(1), diag.FilesSkipped)
	assert.Equal(t, int64(5), diag.LinesMatched)

	files := metrics.Snapshot(metrics.Files)
	assert.Equal(t, 3, files[providers.FileParsed])
	assert.Equal(t, 1, files[providers.FileSkipped])
	assert.Equal(t, 1, metrics.Snapshot(metrics.Stages)["parse"])
}

func TestDiscover_PreservesLineOrder(t *testing.T) {
	p, _, _ := newTestParser(t, parserConfig())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chan_20130101.log"),
		"[10:00] *** Joins: carol (c@h)\n[09:00] <carol> earlier clock, later line\n[10:02] *** Parts: carol (c@h)\n")

	convs, err := p.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	c, ok := convs.Get("chan", date(2013, time.January, 1))
	require.True(t, ok)

	kinds := make([]models.EventKind, 0, len(c.Events))
	for _, e := range c.Events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []models.EventKind{models.KindJoin, models.KindMessage, models.KindPart}, kinds)
}

func TestDiscover_DuplicateKeyLastPathWins(t *testing.T) {
	p, _, logger := newTestParser(t, parserConfig())
	rootA := filepath.Join(t.TempDir(), "a")
	rootB := filepath.Join(filepath.Dir(rootA), "b")
	writeFile(t, filepath.Join(rootA, "chan_20130101.log"), "[10:00] <first> a\n")
	writeFile(t, filepath.Join(rootB, "chan_20130101.log"), "[10:00] <second> b\n")

	// input order does not matter, path order does
	convs, err := p.Discover(context.Background(), []string{rootB, rootA})
	require.NoError(t, err)

	c, ok := convs.Get("chan", date(2013, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(rootB, "chan_20130101.log"), c.Source)
	assert.Equal(t, "second", c.Events[0].Nick)
	assert.Equal(t, 1, logger.Count("warn", "replaces"))
}

func TestDiscover_MissingInputsAreSoft(t *testing.T) {
	p, _, logger := newTestParser(t, parserConfig())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chan_20130101.log"), "[10:00] <bob> hi\n")
	notDir := filepath.Join(root, "chan_20130101.log")

	convs, err := p.Discover(context.Background(), []string{filepath.Join(root, "missing"), notDir, root})
	require.NoError(t, err)
	assert.Equal(t, 1, convs.Len())
	assert.Equal(t, int64(2), p.Diagnostics().PathsMissing)
	assert.Equal(t, 2, logger.Count("error", "Input"))
}

func TestDiscover_IncludeGlobs(t *testing.T) {
	conf := parserConfig()
	conf.Parser.Include = []string{"2013/**/*.log", "**/*_20130101.log"}
	p, _, _ := newTestParser(t, conf)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2013", "jan", "chan_20130101.log"), "[10:00] <bob> hi\n")
	writeFile(t, filepath.Join(root, "2013", "chan_20130102.log"), "[10:00] <bob> hi\n")
	writeFile(t, filepath.Join(root, "2014", "chan_20140102.log"), "[10:00] <bob> hi\n")

	convs, err := p.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2013, time.January, 1), date(2013, time.January, 2)}, convs.Dates("chan"))
	assert.Equal(t, int64(2), p.Diagnostics().FilesParsed)
}

func TestDiscover_CancelledDiscardsResults(t *testing.T) {
	p, _, _ := newTestParser(t, parserConfig())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chan_20130101.log"), "[10:00] <bob> hi\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	convs, err := p.Discover(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, convs)
}
