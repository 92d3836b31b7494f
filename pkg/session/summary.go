package session

import (
	"github.com/charlie0129/cellentry/pkg/cell"
)

// Summary aggregates the cells of a session. It has no cross-cell semantics
// (series/parallel); it only adds up what was entered.
type Summary struct {
	Cells          int     `json:"cells"`
	LFPCells       int     `json:"lfpCells"`
	TotalCurrent   float64 `json:"totalCurrent"`
	AverageCurrent float64 `json:"averageCurrent"`
	TotalCapacity  float64 `json:"totalCapacity"`
	MinTemperature float64 `json:"minTemperature"`
	MaxTemperature float64 `json:"maxTemperature"`
}

// Summarize computes a Summary over cells.
func Summarize(cells []*cell.Spec) Summary {
	var s Summary
	for i, c := range cells {
		s.Cells++
		if c.Chemistry == cell.ChemistryLFP {
			s.LFPCells++
		}
		s.TotalCurrent += c.Current
		s.TotalCapacity += c.Capacity
		if i == 0 || c.Temperature < s.MinTemperature {
			s.MinTemperature = c.Temperature
		}
		if i == 0 || c.Temperature > s.MaxTemperature {
			s.MaxTemperature = c.Temperature
		}
	}
	if s.Cells > 0 {
		s.AverageCurrent = cell.Round(s.TotalCurrent/float64(s.Cells), 2)
	}
	s.TotalCurrent = cell.Round(s.TotalCurrent, 2)
	s.TotalCapacity = cell.Round(s.TotalCapacity, 2)
	return s
}

// Summary summarizes the session's current cells.
func (s *Session) Summary() Summary {
	return Summarize(s.Cells())
}
