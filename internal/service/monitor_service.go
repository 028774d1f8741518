package service

import (
	"context"
	"time"

	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/repository"
)

const recentActivityWindow = time.Hour

// ActivityStore reads persisted answer and violation activity.
type ActivityStore interface {
	GetRecentActivity(ctx context.Context, since time.Time, limit int) ([]repository.ApplicantActivity, error)
}

// LiveSessions lists running sessions.
type LiveSessions interface {
	ActiveSessions() []proctor.State
}

// MonitorService builds snapshots for the live proctoring monitor.
type MonitorService struct {
	repo ActivityStore
	live LiveSessions
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(repo ActivityStore, live LiveSessions) *MonitorService {
	return &MonitorService{repo: repo, live: live}
}

// MonitorStats summarises live sessions.
type MonitorStats struct {
	Active           int `json:"active"`
	Warned           int `json:"warned"`
	Disqualified     int `json:"disqualified"`
	TotalTabSwitches int `json:"total_tab_switches"`
	TotalCopies      int `json:"total_copy_attempts"`
}

// MonitorSnapshot is the first event an admin receives on the monitor stream.
type MonitorSnapshot struct {
	Stats    MonitorStats                   `json:"stats"`
	Sessions []proctor.State                `json:"sessions"`
	Recent   []repository.ApplicantActivity `json:"recent"`
}

// Snapshot combines in-memory live sessions with persisted recent activity.
// Recent activity is best-effort: a failed query yields an empty list.
func (s *MonitorService) Snapshot(ctx context.Context) *MonitorSnapshot {
	sessions := s.live.ActiveSessions()
	snap := &MonitorSnapshot{
		Stats:    liveStats(sessions),
		Sessions: sessions,
		Recent:   []repository.ApplicantActivity{},
	}

	if recent, err := s.repo.GetRecentActivity(ctx, time.Now().Add(-recentActivityWindow), 100); err == nil {
		snap.Recent = recent
	}
	return snap
}

// Stats summarises only the live sessions.
func (s *MonitorService) Stats() MonitorStats {
	return liveStats(s.live.ActiveSessions())
}

func liveStats(sessions []proctor.State) MonitorStats {
	var st MonitorStats
	for _, sess := range sessions {
		switch sess.Status {
		case proctor.StatusActive:
			st.Active++
		case proctor.StatusWarned:
			st.Warned++
		case proctor.StatusDisqualified:
			st.Disqualified++
		}
		st.TotalTabSwitches += sess.TabSwitchCount
		st.TotalCopies += sess.CopyAttemptCount
	}
	return st
}
