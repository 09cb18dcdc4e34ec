package service

import (
	"context"
	"math"
	"sort"
	"time"

	"orientation-service/internal/models"
)

const (
	growthWindow      = 30 * 24 * time.Hour
	recentActivityMax = 5
)

type StatsService struct {
	users        UserAnalytics
	formations   FormationAnalytics
	universities UniversityCounter
	completions  CompletionAnalytics
	now          func() time.Time
}

func NewStatsService(users UserAnalytics, formations FormationAnalytics, universities UniversityCounter, completions CompletionAnalytics) *StatsService {
	return &StatsService{
		users:        users,
		formations:   formations,
		universities: universities,
		completions:  completions,
		now:          time.Now,
	}
}

// Dashboard summarizes catalog and user counts with the latest signups.
func (s *StatsService) Dashboard(ctx context.Context, principal *models.Principal) (*models.Dashboard, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	now := s.now()
	windowStart := now.Add(-growthWindow)
	previousStart := windowStart.Add(-growthWindow)

	d := &models.Dashboard{}
	var err error
	if d.Students.Total, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, err
	}
	if d.Counselors.Total, err = s.users.CountByRole(ctx, models.RoleCounselor); err != nil {
		return nil, err
	}
	if d.Formations.Total, err = s.formations.Count(ctx); err != nil {
		return nil, err
	}
	if d.Universities.Total, err = s.universities.Count(ctx); err != nil {
		return nil, err
	}

	current, err := s.users.CountCreated(ctx, models.RoleStudent, windowStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := s.users.CountCreated(ctx, models.RoleStudent, previousStart, windowStart)
	if err != nil {
		return nil, err
	}
	d.Students.Growth = Growth(current, previous)

	students, err := s.users.Recent(ctx, models.RoleStudent, windowStart, recentActivityMax)
	if err != nil {
		return nil, err
	}
	counselors, err := s.users.Recent(ctx, models.RoleCounselor, windowStart, recentActivityMax)
	if err != nil {
		return nil, err
	}
	formations, err := s.formations.Recent(ctx, windowStart, recentActivityMax)
	if err != nil {
		return nil, err
	}

	activity := make([]models.ActivityItem, 0, len(students)+len(counselors)+len(formations))
	for _, u := range counselors {
		activity = append(activity, models.ActivityItem{Type: "counselor", Message: "New counselor registered", Timestamp: u.CreatedAt})
	}
	for _, u := range students {
		activity = append(activity, models.ActivityItem{Type: "student", Message: "New student registered", Timestamp: u.CreatedAt})
	}
	for _, f := range formations {
		activity = append(activity, models.ActivityItem{Type: "formation", Message: "New formation added", Timestamp: f.CreatedAt})
	}
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})
	if len(activity) > recentActivityMax {
		activity = activity[:recentActivityMax]
	}
	d.RecentActivity = activity
	return d, nil
}

// Growth is the percent change from previous to current, or 100 when there
// is nothing to compare against.
func Growth(current, previous int64) int64 {
	if previous == 0 {
		return 100
	}
	return int64(math.Round(float64(current-previous) / float64(previous) * 100))
}

func (s *StatsService) QuizStatistics(ctx context.Context, principal *models.Principal, timeRange string) (*models.QuizStatistics, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	r := models.ParseTimeRange(timeRange)
	since := r.Start(s.now())

	overview, err := s.completions.Overview(ctx, since)
	if err != nil {
		return nil, err
	}
	distribution, err := s.completions.Distribution(ctx, since)
	if err != nil {
		return nil, err
	}
	daily, err := s.completions.DailyCounts(ctx, since)
	if err != nil {
		return nil, err
	}
	byLevel, err := s.completions.AverageByLevel(ctx, since)
	if err != nil {
		return nil, err
	}

	return &models.QuizStatistics{
		Range:                r,
		Overview:             *overview,
		ScoreDistribution:    *distribution,
		QuizCompletion:       daily,
		AverageScoresByLevel: byLevel,
	}, nil
}
