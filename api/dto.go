/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures the external UI consumes. These types decouple
  the attendance model from the API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Uploads:  UploadDTO
  Settings: SettingsRequest, SettingsResponse, BoundsDTO
  People:   PeopleResponse, PersonDTO, DayDTO, SummaryDTO
  Report:   ReportResponse, ReportRowDTO

VALIDATION:
  Settings are never rejected for range; out-of-range or non-numeric values
  are clamped exactly like the UI's number inputs.

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/params.go: Bounds and clamping
*/
package api

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/jalali"
	"github.com/warp/traffic-engine/store/sqlite"
)

// =============================================================================
// UPLOADS
// =============================================================================

// UploadDTO describes a published file.
type UploadDTO struct {
	ID         string    `json:"id,omitempty"`
	Filename   string    `json:"filename"`
	Generation uint64    `json:"generation"`
	Rows       int       `json:"rows"`
	People     int       `json:"people"`
	CreatedAt  time.Time `json:"created_at"`
	Persisted  bool      `json:"persisted"`
}

func toUploadDTO(u sqlite.Upload) UploadDTO {
	return UploadDTO{
		ID:         u.ID,
		Filename:   u.Filename,
		Generation: u.Generation,
		Rows:       u.Rows,
		People:     u.People,
		CreatedAt:  u.CreatedAt,
		Persisted:  true,
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsRequest accepts numbers or the raw text of a number input, so
// "15" and "15min" both read as 15. Omitted fields keep their value.
type SettingsRequest struct {
	MergeIntervalMinutes json.RawMessage `json:"merge_interval_minutes"`
	TrafficLimit         json.RawMessage `json:"traffic_limit"`
	ReferenceMonth       *string         `json:"reference_month"`
}

// apply merges the request onto current.
func (req SettingsRequest) apply(current attendance.Params) (attendance.Params, error) {
	p := current
	if present(req.MergeIntervalMinutes) {
		p.MergeIntervalMinutes = boundField(req.MergeIntervalMinutes, attendance.MinMergeInterval, attendance.MaxMergeInterval)
	}
	if present(req.TrafficLimit) {
		p.TrafficLimit = boundField(req.TrafficLimit, attendance.MinTrafficLimit, attendance.MaxTrafficLimit)
	}
	if req.ReferenceMonth != nil {
		s, err := attendance.ParseReferenceMonthStrategy(*req.ReferenceMonth)
		if err != nil {
			return current, err
		}
		p.ReferenceMonth = s
	}
	return p, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func boundField(raw json.RawMessage, lo, hi int) int {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return attendance.ParseBound(text, lo, hi)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil || errors.Is(err, strconv.ErrRange) {
			return boundFloat(f, lo, hi)
		}
	}
	return lo
}

// boundFloat clamps before converting, since int(f) is undefined for floats
// outside the int range.
func boundFloat(f float64, lo, hi int) int {
	switch {
	case math.IsNaN(f):
		return lo
	case f >= float64(hi):
		return hi
	case f < float64(lo):
		return lo
	}
	return attendance.ParseBound(strconv.Itoa(int(f)), lo, hi)
}

// BoundsDTO is the valid range of a numeric setting.
type BoundsDTO struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

type SettingsResponse struct {
	Params     attendance.Params    `json:"params"`
	Bounds     map[string]BoundsDTO `json:"bounds"`
	Strategies []string             `json:"reference_month_strategies"`
}

func settingsResponse(p attendance.Params) SettingsResponse {
	return SettingsResponse{
		Params: p,
		Bounds: map[string]BoundsDTO{
			"merge_interval_minutes": {attendance.MinMergeInterval, attendance.MaxMergeInterval, attendance.DefaultMergeInterval},
			"traffic_limit":          {attendance.MinTrafficLimit, attendance.MaxTrafficLimit, attendance.DefaultTrafficLimit},
		},
		Strategies: []string{string(attendance.FirstInserted), string(attendance.EarliestDate)},
	}
}

// =============================================================================
// PEOPLE
// =============================================================================

// PeopleResponse is the ranked, optionally filtered, high-traffic list.
type PeopleResponse struct {
	Loaded     bool                   `json:"loaded"`
	Generation uint64                 `json:"generation"`
	Params     attendance.Params      `json:"params"`
	Total      int                    `json:"total"`
	People     []attendance.ReportRow `json:"people"`
}

// DayDTO is one day of a merged log.
type DayDTO struct {
	Date     string             `json:"date"`
	Friendly string             `json:"friendly"`
	Count    int                `json:"count"`
	Level    attendance.Level   `json:"level"`
	Entries  []attendance.Entry `json:"entries"`
}

// PersonDTO is a person's merged log.
type PersonDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ActiveDays int      `json:"active_days"`
	Days       []DayDTO `json:"days"`
}

func toPersonDTO(p *attendance.Person, limit int) PersonDTO {
	dto := PersonDTO{ID: p.ID, Name: p.Name, ActiveDays: p.ActiveDays(), Days: make([]DayDTO, len(p.Days))}
	for i, d := range p.Days {
		dto.Days[i] = DayDTO{
			Date:     d.Date,
			Friendly: jalali.Friendly(d.Date),
			Count:    len(d.Entries),
			Level:    attendance.Classify(len(d.Entries), limit),
			Entries:  d.Entries,
		}
	}
	return dto
}

// SummaryDTO adds display names to a month summary.
type SummaryDTO struct {
	attendance.MonthSummary
	MonthName string `json:"month_name"`
}

func toSummaryDTO(s attendance.MonthSummary) SummaryDTO {
	return SummaryDTO{
		MonthSummary: s,
		MonthName:    jalali.Date{Day: 1, Month: s.Month, Year: s.Year}.MonthName(),
	}
}

// =============================================================================
// REPORT
// =============================================================================

type ReportRowDTO struct {
	attendance.ReportRow
	Share string `json:"high_traffic_share"`
}

type ReportResponse struct {
	Headers []string       `json:"headers"`
	Rows    []ReportRowDTO `json:"rows"`
}

func toReportResponse(rows []attendance.ReportRow) ReportResponse {
	resp := ReportResponse{Headers: attendance.ReportHeaders, Rows: make([]ReportRowDTO, len(rows))}
	for i, r := range rows {
		resp.Rows[i] = ReportRowDTO{ReportRow: r, Share: r.Share().StringFixed(2)}
	}
	return resp
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
