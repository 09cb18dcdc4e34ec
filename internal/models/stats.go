package models

import "time"

type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)

// ParseTimeRange falls back to RangeWeek for anything unrecognized.
func ParseTimeRange(raw string) TimeRange {
	switch TimeRange(raw) {
	case RangeMonth, RangeYear:
		return TimeRange(raw)
	}
	return RangeWeek
}

// Start returns the beginning of the range containing now. Weeks start on Sunday.
func (r TimeRange) Start(now time.Time) time.Time {
	y, m, d := now.Date()
	switch r {
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case RangeYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	}
}

type CompletionOverview struct {
	AverageScore     float64 `bson:"average_score" json:"averageScore"`
	TotalQuizzes     int64   `bson:"total_quizzes" json:"totalQuizzes"`
	AverageTimeSpent float64 `bson:"average_time_spent" json:"averageTimeSpent"`
	SuccessRate      float64 `bson:"success_rate" json:"successRate"`
}

type ScoreDistribution struct {
	Excellent        int64 `json:"excellent"`
	Good             int64 `json:"good"`
	NeedsImprovement int64 `json:"needsImprovement"`
}

type DailyCount struct {
	Date  string `bson:"date" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

type LevelAverage struct {
	Level        Level   `bson:"level" json:"level"`
	AverageScore float64 `bson:"average_score" json:"averageScore"`
	Count        int64   `bson:"count" json:"count"`
}

type QuizStatistics struct {
	Range                TimeRange          `json:"timeRange"`
	Overview             CompletionOverview `json:"overview"`
	ScoreDistribution    ScoreDistribution  `json:"scoreDistribution"`
	QuizCompletion       []DailyCount       `json:"quizCompletion"`
	AverageScoresByLevel []LevelAverage     `json:"averageScoresByLevel"`
}

type ActivityItem struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Dashboard struct {
	Students struct {
		Total  int64 `json:"total"`
		Growth int64 `json:"growth"`
	} `json:"students"`
	Counselors struct {
		Total int64 `json:"total"`
	} `json:"counselors"`
	Formations struct {
		Total int64 `json:"total"`
	} `json:"formations"`
	Universities struct {
		Total int64 `json:"total"`
	} `json:"universities"`
	RecentActivity []ActivityItem `json:"recentActivity"`
}
