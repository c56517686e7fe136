package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/maintsys/mro-stock-service/internal/history"
	"github.com/maintsys/mro-stock-service/internal/history/dto"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/pkg/cache"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	colorGreen  = "#4CAF50"
	colorOrange = "#FF9800"
	colorBlue   = "#2196F3"
	colorPurple = "#9C27B0"

	healthWindow   = 365 * 24 * time.Hour
	healthCacheTTL = time.Minute
)

type historyUseCase struct {
	repo   history.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewHistoryUseCase(repo history.Repository, c *cache.RedisClient, log logger.ZapLogger) history.UseCase {
	return &historyUseCase{
		repo:   repo,
		cache:  c,
		logger: log,
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func hoursOrZero(h *float64) float64 {
	if h == nil {
		return 0
	}
	return *h
}

func (uc *historyUseCase) getEquipment(ctx context.Context, equipmentNo string) (*model.Equipment, error) {
	eq, err := uc.repo.GetEquipment(ctx, equipmentNo)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	if eq == nil {
		return nil, &history.EquipmentNotFoundError{EquipmentNo: equipmentNo}
	}
	return eq, nil
}

func (uc *historyUseCase) HealthScore(ctx context.Context, equipmentNo string) (*dto.HealthMetrics, error) {
	cacheKey := "history:health:" + equipmentNo
	if uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var metrics dto.HealthMetrics
			if err := json.Unmarshal([]byte(val), &metrics); err == nil {
				return &metrics, nil
			}
		}
	}

	eq, err := uc.getEquipment(ctx, equipmentNo)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-healthWindow)

	pms, err := uc.repo.ListPMCompletions(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	cms, err := uc.repo.ListWorkOrders(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	usage, err := uc.repo.ListUsageEvents(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}

	metrics := &dto.HealthMetrics{
		EquipmentNo:     equipmentNo,
		Status:          eq.Status,
		PartsCount:      len(usage),
		Recommendations: []string{},
	}

	expectedPMs := 0
	if eq.MonthlyPM {
		expectedPMs += 12
	}
	if eq.AnnualPM {
		expectedPMs++
	}
	if expectedPMs > 0 {
		compliance := int(float64(len(pms)) / float64(expectedPMs) * 100)
		if compliance > 100 {
			compliance = 100
		}
		metrics.PMCompliance = compliance
	}

	metrics.CMFrequency = math.Round(float64(len(cms))/12*10) / 10

	for _, pm := range pms {
		metrics.LaborHours += hoursOrZero(pm.LaborHours)
	}
	for _, cm := range cms {
		metrics.LaborHours += hoursOrZero(cm.LaborHours)
	}

	score := 100.0
	score -= float64(100-metrics.PMCompliance) * 0.3
	if metrics.CMFrequency > 1 {
		score -= math.Min(20, (metrics.CMFrequency-1)*10)
	}
	if metrics.Status != "Active" {
		score -= 30
	}
	if score < 0 {
		score = 0
	}
	metrics.HealthScore = int(score)

	if metrics.PMCompliance < 80 {
		metrics.Recommendations = append(metrics.Recommendations, "Improve PM compliance - currently below 80%")
	}
	if metrics.CMFrequency > 2 {
		metrics.Recommendations = append(metrics.Recommendations, "High CM frequency - investigate root causes")
	}
	if metrics.PartsCount > 20 {
		metrics.Recommendations = append(metrics.Recommendations, "High parts usage - review equipment reliability")
	}
	if metrics.Status != "Active" {
		metrics.Recommendations = append(metrics.Recommendations,
			fmt.Sprintf("Equipment status is '%s' - review and update", metrics.Status))
	}

	if uc.cache != nil {
		if data, err := json.Marshal(metrics); err == nil {
			if err := uc.cache.Client.Set(ctx, cacheKey, data, healthCacheTTL).Err(); err != nil {
				uc.logger.Warn("failed to cache health score", zap.Error(err))
			}
		}
	}

	return metrics, nil
}

func (uc *historyUseCase) Timeline(ctx context.Context, equipmentNo string, days int) ([]dto.TimelineEvent, error) {
	if _, err := uc.getEquipment(ctx, equipmentNo); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 365
	}
	since := time.Now().AddDate(0, 0, -days)

	pms, err := uc.repo.ListPMCompletions(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	cms, err := uc.repo.ListWorkOrders(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	usage, err := uc.repo.ListUsageEvents(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	changes, err := uc.repo.ListStatusChanges(ctx, equipmentNo, since)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}

	events := make([]dto.TimelineEvent, 0, len(pms)+2*len(cms)+len(usage)+len(changes))

	for _, pm := range pms {
		events = append(events, dto.TimelineEvent{
			Date:     pm.CompletionDate,
			Type:     "PM",
			Category: "Preventive Maintenance",
			Title:    fmt.Sprintf("%s PM", pm.PMType),
			Details:  fmt.Sprintf("Technician: %s, Hours: %g", strOrEmpty(pm.Technician), hoursOrZero(pm.LaborHours)),
			Notes:    strOrEmpty(pm.Notes),
			Color:    colorGreen,
		})
	}

	for _, cm := range cms {
		events = append(events, dto.TimelineEvent{
			Date:     cm.ReportedDate,
			Type:     "CM_OPEN",
			Category: "Corrective Maintenance",
			Title:    fmt.Sprintf("CM %s Opened", cm.WorkOrderID),
			Details:  fmt.Sprintf("Priority: %s, Assigned: %s", strOrEmpty(cm.Priority), strOrEmpty(cm.AssignedTo)),
			Notes:    strOrEmpty(cm.Description),
			Color:    colorOrange,
		})
		if cm.ClosedDate != nil {
			events = append(events, dto.TimelineEvent{
				Date:     *cm.ClosedDate,
				Type:     "CM_CLOSE",
				Category: "Corrective Maintenance",
				Title:    fmt.Sprintf("CM %s Closed", cm.WorkOrderID),
				Details:  fmt.Sprintf("Hours: %g", hoursOrZero(cm.LaborHours)),
				Notes:    strOrEmpty(cm.CorrectiveAction),
				Color:    colorGreen,
			})
		}
	}

	for _, u := range usage {
		events = append(events, dto.TimelineEvent{
			Date:     u.Date,
			Type:     "PART",
			Category: "Parts Request",
			Title:    fmt.Sprintf("Part: %s", u.PartNumber),
			Details:  fmt.Sprintf("Model: %s, Requested by: %s", strOrEmpty(u.ModelNumber), u.RecordedBy),
			Notes:    fmt.Sprintf("CM: %s, Notes: %s", u.WorkOrderID, u.Notes),
			Color:    colorBlue,
		})
	}

	for _, ch := range changes {
		events = append(events, dto.TimelineEvent{
			Date:     ch.Date,
			Type:     "STATUS",
			Category: "Status Change",
			Title:    "Status Changed",
			Details:  fmt.Sprintf("By: %s", ch.Actor),
			Notes:    fmt.Sprintf("From: %s To: %s", strOrEmpty(ch.OldValues), strOrEmpty(ch.NewValues)),
			Color:    colorPurple,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})

	return events, nil
}

func (uc *historyUseCase) Trends(ctx context.Context, equipmentNo string, months int) (*dto.TrendData, error) {
	if _, err := uc.getEquipment(ctx, equipmentNo); err != nil {
		return nil, err
	}
	if months <= 0 {
		months = 12
	}

	now := time.Now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windowStart := currentMonth.AddDate(0, -(months - 1), 0)

	pms, err := uc.repo.ListPMCompletions(ctx, equipmentNo, windowStart)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}
	cms, err := uc.repo.ListWorkOrders(ctx, equipmentNo, windowStart)
	if err != nil {
		return nil, &history.DataUnavailable{Cause: err}
	}

	type bucket struct {
		pmCount int
		cmCount int
		hours   float64
	}
	buckets := map[string]*bucket{}
	monthKey := func(t time.Time) string { return t.Format("2006-01") }

	for _, pm := range pms {
		key := monthKey(pm.CompletionDate)
		if buckets[key] == nil {
			buckets[key] = &bucket{}
		}
		buckets[key].pmCount++
		buckets[key].hours += hoursOrZero(pm.LaborHours)
	}
	for _, cm := range cms {
		key := monthKey(cm.ReportedDate)
		if buckets[key] == nil {
			buckets[key] = &bucket{}
		}
		buckets[key].cmCount++
		buckets[key].hours += hoursOrZero(cm.LaborHours)
	}

	trends := &dto.TrendData{
		Months:            make([]string, 0, months),
		MonthlyPMCounts:   make([]int, 0, months),
		MonthlyCMCounts:   make([]int, 0, months),
		MonthlyLaborHours: make([]float64, 0, months),
	}

	// Oldest month first; AddDate on the first of the month rolls year
	// boundaries correctly.
	for month := windowStart; !month.After(currentMonth); month = month.AddDate(0, 1, 0) {
		key := monthKey(month)
		trends.Months = append(trends.Months, key)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
		}
		trends.MonthlyPMCounts = append(trends.MonthlyPMCounts, b.pmCount)
		trends.MonthlyCMCounts = append(trends.MonthlyCMCounts, b.cmCount)
		trends.MonthlyLaborHours = append(trends.MonthlyLaborHours, b.hours)
	}

	return trends, nil
}
