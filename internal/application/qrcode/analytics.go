package qrcode

import (
	"math"
	"net/url"
	"sort"
	"time"

	"github.com/qrdesk-api/internal/domain"
)

const (
	histogramDays = 30
	recentLimit   = 10
	dayLayout     = "2006-01-02"
	direct        = "Direct"
)

// Analytics is the full per-code report.
type Analytics struct {
	TotalScans         int                `json:"total_scans"`
	ScansOverTime      map[string]int     `json:"scans_over_time"`
	Devices            map[string]int     `json:"devices"`
	Browsers           map[string]int     `json:"browsers"`
	OperatingSystems   map[string]int     `json:"operating_systems"`
	Countries          map[string]int     `json:"countries"`
	Cities             map[string]int     `json:"cities"`
	HourlyDistribution [24]int            `json:"hourly_distribution"`
	Last24Hours        int                `json:"last_24_hours"`
	Last7Days          int                `json:"last_7_days"`
	UniqueVisitors     int                `json:"unique_visitors"`
	Referrers          map[string]int     `json:"referrers"`
	RecentScans        []domain.ScanEvent `json:"recent_scans"`
	GrowthRate         float64            `json:"growth_rate"`
}

// RealTimeAnalytics holds short rolling-window counts.
type RealTimeAnalytics struct {
	Last5Minutes int `json:"last_5_minutes"`
	LastHour     int `json:"last_hour"`
	Last24Hours  int `json:"last_24_hours"`
}

// UserScanAnalytics aggregates every code of one owner.
type UserScanAnalytics struct {
	TotalCodes     int            `json:"total_codes"`
	TotalScans     int64          `json:"total_scans"`
	ScansLast30Day int            `json:"scans_last_30_days"`
	ScansOverTime  map[string]int `json:"scans_over_time"`
}

// computeAnalytics aggregates events as of now. Events may be in any order.
func computeAnalytics(events []domain.ScanEvent, now time.Time) *Analytics {
	a := &Analytics{
		TotalScans:       len(events),
		ScansOverTime:    emptyHistogram(now),
		Devices:          map[string]int{},
		Browsers:         map[string]int{},
		OperatingSystems: map[string]int{},
		Countries:        map[string]int{},
		Cities:           map[string]int{},
		Referrers:        map[string]int{},
	}

	visitors := make(map[string]struct{}, len(events))
	var current, previous int
	for _, ev := range events {
		at := ev.ScannedAt.UTC()
		age := now.Sub(at)

		if day := at.Format(dayLayout); hasKey(a.ScansOverTime, day) {
			a.ScansOverTime[day]++
		}
		a.Devices[ev.DeviceType]++
		a.Browsers[ev.Browser]++
		a.OperatingSystems[ev.OS]++
		a.Countries[ev.Location.Country]++
		a.Cities[ev.Location.City]++
		a.HourlyDistribution[at.Hour()]++
		a.Referrers[referrerHost(ev.Referrer)]++
		visitors[ev.IP+"|"+ev.UserAgent] = struct{}{}

		if age <= 24*time.Hour {
			a.Last24Hours++
		}
		if age <= 7*24*time.Hour {
			a.Last7Days++
		}
		switch {
		case age <= 30*24*time.Hour:
			current++
		case age <= 60*24*time.Hour:
			previous++
		}
	}
	a.UniqueVisitors = len(visitors)
	a.GrowthRate = growthRate(current, previous)
	a.RecentScans = mostRecent(events, recentLimit)
	return a
}

func computeRealTime(events []domain.ScanEvent, now time.Time) *RealTimeAnalytics {
	rt := &RealTimeAnalytics{}
	for _, ev := range events {
		age := now.Sub(ev.ScannedAt)
		if age <= 5*time.Minute {
			rt.Last5Minutes++
		}
		if age <= time.Hour {
			rt.LastHour++
		}
		if age <= 24*time.Hour {
			rt.Last24Hours++
		}
	}
	return rt
}

// emptyHistogram returns the last 30 UTC days, today included, all zero.
func emptyHistogram(now time.Time) map[string]int {
	h := make(map[string]int, histogramDays)
	today := now.UTC()
	for i := 0; i < histogramDays; i++ {
		h[today.AddDate(0, 0, -i).Format(dayLayout)] = 0
	}
	return h
}

// histogramStart is the first instant covered by emptyHistogram(now).
func histogramStart(now time.Time) time.Time {
	d := now.UTC().AddDate(0, 0, -(histogramDays - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// addToHistogram counts events whose day is already a key of h.
func addToHistogram(h map[string]int, events []domain.ScanEvent) int {
	n := 0
	for _, ev := range events {
		if day := ev.ScannedAt.UTC().Format(dayLayout); hasKey(h, day) {
			h[day]++
			n++
		}
	}
	return n
}

func hasKey(h map[string]int, k string) bool {
	_, ok := h[k]
	return ok
}

func referrerHost(ref *string) string {
	if ref == nil || *ref == "" {
		return direct
	}
	u, err := url.Parse(*ref)
	if err != nil || u.Hostname() == "" {
		return direct
	}
	return u.Hostname()
}

// growthRate is the percentage change from previous to current, rounded to
// two decimals. It is 0 when there is no previous window to compare with.
func growthRate(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	rate := float64(current-previous) / float64(previous) * 100
	return math.Round(rate*100) / 100
}

func mostRecent(events []domain.ScanEvent, n int) []domain.ScanEvent {
	sorted := make([]domain.ScanEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScannedAt.After(sorted[j].ScannedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
