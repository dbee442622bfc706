package services

import (
	"fmt"

	"ircstat/internal/graphs"
	"ircstat/internal/models"
)

// Report is everything the renderer gets for one plugin. Run is the ULID of
// the aggregation that built it, shared by every report of that run.
type Report struct {
	Plugin string
	Run    string
	Graphs []graphs.Request
	Stats  *models.NetworkStat
}

type ReportSnapshot struct {
	Version int                     `json:"version"`
	Plugin  string                  `json:"plugin"`
	Run     string                  `json:"run,omitempty"`
	Graphs  []graphs.Request        `json:"graphs"`
	Network *models.NetworkSnapshot `json:"network"`
}

func (r *Report) Snapshot() *ReportSnapshot {
	return &ReportSnapshot{
		Version: models.SnapshotVersion,
		Plugin:  r.Plugin,
		Run:     r.Run,
		Graphs:  r.Graphs,
		Network: r.Stats.Snapshot(),
	}
}

func NewReportFromSnapshot(snap *ReportSnapshot) (*Report, error) {
	if snap.Version != models.SnapshotVersion {
		return nil, fmt.Errorf("report %s: unsupported version %d", snap.Plugin, snap.Version)
	}
	if snap.Plugin == "" {
		return nil, fmt.Errorf("report without plugin name")
	}
	stats, err := models.NewNetworkStatFromSnapshot(snap.Network)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", snap.Plugin, err)
	}
	return &Report{
		Plugin: snap.Plugin,
		Run:    snap.Run,
		Graphs: snap.Graphs,
		Stats:  stats,
	}, nil
}
