package service

import (
	"context"

	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/repository"
)

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Summary       *repository.DashboardSummary       `json:"summary"`
	StatusCounts  map[model.ApplicantStatus]int      `json:"status_counts"`
	RecentResults []repository.DashboardRecentResult `json:"recent_results"`
	LiveSessions  int                                `json:"live_sessions"`
}

// DashboardStore reads aggregate recruitment metrics.
type DashboardStore interface {
	GetSummary(ctx context.Context) (*repository.DashboardSummary, error)
	GetStatusCounts(ctx context.Context) (map[model.ApplicantStatus]int, error)
	GetRecentResults(ctx context.Context, limit int) ([]repository.DashboardRecentResult, error)
}

// LiveCounter reports how many test sessions are running.
type LiveCounter interface {
	ActiveCount() int
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo DashboardStore
	live LiveCounter
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore, live LiveCounter) *DashboardService {
	return &DashboardService{repo: repo, live: live}
}

// GetDashboardData gathers all dashboard metrics.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	summary, err := s.repo.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range []model.ApplicantStatus{
		model.ApplicantStatusRegistered,
		model.ApplicantStatusTested,
		model.ApplicantStatusDisqualified,
	} {
		if _, ok := statusCounts[st]; !ok {
			statusCounts[st] = 0
		}
	}

	recent, err := s.repo.GetRecentResults(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		Summary:       summary,
		StatusCounts:  statusCounts,
		RecentResults: recent,
		LiveSessions:  s.live.ActiveCount(),
	}, nil
}
