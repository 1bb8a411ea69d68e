package api

import (
	"time"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
)

type timelineResponse struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	DayHeight   float64          `json:"dayHeight"`
	TotalHeight float64          `json:"totalHeight"`
	TodayIndex  int              `json:"todayIndex"`
	NowPercent  float64          `json:"nowPercent"`
	NowOffset   float64          `json:"nowOffset"`
	Days        []dayResponse    `json:"days"`
	Gaps        []gapResponse    `json:"gaps"`
	Markers     []markerResponse `json:"markers"`
	Warnings    []string         `json:"warnings,omitempty"`
}

type dayResponse struct {
	Key     string         `json:"key"`
	Start   time.Time      `json:"start"`
	End     time.Time      `json:"end"`
	IsToday bool           `json:"isToday"`
	Top     float64        `json:"top"`
	Events  []placedIntake `json:"events"`
}

type placedIntake struct {
	model.IntakeRecord
	Mass    float64 `json:"mass"`
	Percent float64 `json:"percent"`
	Offset  float64 `json:"offset"`
}

type gapResponse struct {
	Subject  model.Subject `json:"subject"`
	From     time.Time     `json:"from"`
	To       time.Time     `json:"to"`
	Label    string        `json:"label"`
	Open     bool          `json:"open"`
	DayIndex int           `json:"dayIndex"`
	Offset   float64       `json:"offset"`
}

type markerResponse struct {
	Minutes int     `json:"minutes"`
	Percent float64 `json:"percent"`
	Major   bool    `json:"major"`
	Label   string  `json:"label,omitempty"`
}

type resolveResponse struct {
	Y        float64   `json:"y"`
	DayIndex int       `json:"dayIndex"`
	DayKey   string    `json:"dayKey"`
	Minutes  int       `json:"minutes"`
	Time     time.Time `json:"time"`
}

func newTimelineResponse(view *monitor.View) timelineResponse {
	resp := timelineResponse{
		GeneratedAt: view.GeneratedAt,
		DayHeight:   view.Layout.DayHeight,
		TotalHeight: view.Layout.TotalHeight(len(view.Buckets)),
		TodayIndex:  view.TodayIndex,
		NowPercent:  view.NowPercent,
		NowOffset:   view.NowOffset,
		Days:        make([]dayResponse, len(view.Buckets)),
		Gaps:        make([]gapResponse, 0, len(view.Gaps)),
		Markers:     make([]markerResponse, 0, len(view.Markers)),
		Warnings:    view.Warnings,
	}

	for i, b := range view.Buckets {
		resp.Days[i] = dayResponse{
			Key:     b.Key,
			Start:   b.Start,
			End:     b.End,
			IsToday: b.IsToday,
			Top:     view.Layout.DayRect(i).Top,
			Events:  []placedIntake{},
		}
	}
	for _, p := range view.Placements {
		day := &resp.Days[p.DayIndex]
		day.Events = append(day.Events, placedIntake{
			IntakeRecord: p.Event.ToRecord(),
			Mass:         units.NormalizedMass(p.Event),
			Percent:      p.Percent,
			Offset:       p.Offset,
		})
	}
	for _, g := range view.Gaps {
		resp.Gaps = append(resp.Gaps, gapResponse{
			Subject:  g.Subject,
			From:     g.Label.From,
			To:       g.Label.To,
			Label:    g.Label.Label,
			Open:     g.Label.Open,
			DayIndex: g.DayIndex,
			Offset:   g.Offset,
		})
	}
	for _, m := range view.Markers {
		resp.Markers = append(resp.Markers, markerResponse{
			Minutes: m.Minutes,
			Percent: m.Percent,
			Major:   m.Major,
			Label:   m.Label,
		})
	}
	return resp
}
