package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/repository"
	"github.com/stemsi/recruit-backend/internal/service"
)

func (f *fakeFeedback) Create(_ context.Context, fb *model.Feedback) error {
	fb.ID = uuid.New()
	f.created = append(f.created, fb)
	return nil
}

func (f *fakeFeedback) ListPaginated(_ context.Context, limit, offset int) ([]repository.FeedbackEntry, int, error) {
	return []repository.FeedbackEntry{}, len(f.created), nil
}

func TestApplicantService_Register(t *testing.T) {
	svc := service.NewApplicantService(newFakeApplicants())

	a, err := svc.Register(context.Background(), model.RegisterApplicantRequest{
		Name:     "  Dewi Lestari ",
		Email:    " Dewi@Example.COM",
		Phone:    "081234567",
		Position: "QA Engineer",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a.Name != "Dewi Lestari" || a.Email != "dewi@example.com" {
		t.Errorf("fields not normalized: %+v", a)
	}
	if a.Status != model.ApplicantStatusRegistered {
		t.Errorf("status = %s", a.Status)
	}

	_, err = svc.Register(context.Background(), model.RegisterApplicantRequest{
		Name:     "Someone Else",
		Email:    "DEWI@example.com",
		Phone:    "081234567",
		Position: "QA Engineer",
	})
	if !errors.Is(err, service.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	if _, err := svc.GetByID(context.Background(), uuid.New()); !errors.Is(err, service.ErrApplicantNotFound) {
		t.Errorf("expected ErrApplicantNotFound, got %v", err)
	}
}

func TestApplicantService_List(t *testing.T) {
	tested := registered("tom")
	tested.Status = model.ApplicantStatusTested
	svc := service.NewApplicantService(newFakeApplicants(registered("ana"), registered("bob"), tested))

	all, total, err := svc.List(context.Background(), nil, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(all) != 2 {
		t.Errorf("got %d items of %d", len(all), total)
	}

	status := model.ApplicantStatusTested
	filtered, total, err := svc.List(context.Background(), &status, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || filtered[0].ID != tested.ID {
		t.Errorf("unexpected filtered result %v", filtered)
	}
}

func TestFeedbackService_Submit(t *testing.T) {
	fresh := registered("ana")
	done := registered("bob")
	done.Status = model.ApplicantStatusDisqualified

	store := &fakeFeedback{}
	svc := service.NewFeedbackService(store, newFakeApplicants(fresh, done))

	if _, err := svc.Submit(context.Background(), fresh.ID, model.SubmitFeedbackRequest{Rating: 4}); !errors.Is(err, service.ErrFeedbackBeforeTest) {
		t.Errorf("expected ErrFeedbackBeforeTest, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), uuid.New(), model.SubmitFeedbackRequest{Rating: 4}); !errors.Is(err, service.ErrApplicantNotFound) {
		t.Errorf("expected ErrApplicantNotFound, got %v", err)
	}

	fb, err := svc.Submit(context.Background(), done.ID, model.SubmitFeedbackRequest{Rating: 5, Comments: "  clear instructions  "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.Comments != "clear instructions" || fb.ApplicantID != done.ID {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if len(store.created) != 1 {
		t.Errorf("stored = %d, want 1", len(store.created))
	}
}

type fakeDashboard struct {
	counts map[model.ApplicantStatus]int
}

func (f fakeDashboard) GetSummary(context.Context) (*repository.DashboardSummary, error) {
	return &repository.DashboardSummary{TotalApplicants: 4, TotalResults: 1}, nil
}

func (f fakeDashboard) GetStatusCounts(context.Context) (map[model.ApplicantStatus]int, error) {
	return f.counts, nil
}

func (f fakeDashboard) GetRecentResults(context.Context, int) ([]repository.DashboardRecentResult, error) {
	return []repository.DashboardRecentResult{}, nil
}

type staticSessions []proctor.State

func (s staticSessions) ActiveSessions() []proctor.State { return s }
func (s staticSessions) ActiveCount() int                { return len(s) }

func TestDashboardService_ZeroFillsStatuses(t *testing.T) {
	repo := fakeDashboard{counts: map[model.ApplicantStatus]int{model.ApplicantStatusRegistered: 3}}
	live := staticSessions{{Status: proctor.StatusActive}}
	svc := service.NewDashboardService(repo, live)

	data, err := svc.GetDashboardData(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(data.StatusCounts) != 3 {
		t.Errorf("status counts = %v", data.StatusCounts)
	}
	if data.StatusCounts[model.ApplicantStatusDisqualified] != 0 || data.StatusCounts[model.ApplicantStatusRegistered] != 3 {
		t.Errorf("status counts = %v", data.StatusCounts)
	}
	if data.LiveSessions != 1 {
		t.Errorf("live = %d, want 1", data.LiveSessions)
	}
}

type failingActivity struct{}

func (failingActivity) GetRecentActivity(context.Context, time.Time, int) ([]repository.ApplicantActivity, error) {
	return nil, errors.New("db down")
}

func TestMonitorService_Snapshot(t *testing.T) {
	live := staticSessions{
		{Status: proctor.StatusActive, TabSwitchCount: 0, CopyAttemptCount: 1},
		{Status: proctor.StatusWarned, TabSwitchCount: 1},
		{Status: proctor.StatusDisqualified, TabSwitchCount: 3, CopyAttemptCount: 2},
	}
	svc := service.NewMonitorService(failingActivity{}, live)

	snap := svc.Snapshot(context.Background())
	want := service.MonitorStats{Active: 1, Warned: 1, Disqualified: 1, TotalTabSwitches: 4, TotalCopies: 3}
	if snap.Stats != want {
		t.Errorf("stats = %+v, want %+v", snap.Stats, want)
	}
	if snap.Recent == nil || len(snap.Recent) != 0 {
		t.Errorf("recent should be empty on failure, got %v", snap.Recent)
	}
	if len(snap.Sessions) != 3 {
		t.Errorf("sessions = %d", len(snap.Sessions))
	}
}
