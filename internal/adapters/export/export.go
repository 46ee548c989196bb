// Package export writes the session ledger as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xvierd/pomo/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("invalid export format %q: must be json or csv", s)
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

type document struct {
	ExportedAt    time.Time     `json:"exportedAt"`
	TotalSessions int           `json:"totalSessions"`
	Summary       summaryRecord `json:"summary"`
	Sessions      []sessionRow  `json:"sessions"`
}

type summaryRecord struct {
	CompletedSessions int     `json:"completedSessions"`
	FocusMinutes      int     `json:"focusMinutes"`
	BreakMinutes      int     `json:"breakMinutes"`
	FirstDate         *string `json:"firstDate"`
	LastDate          *string `json:"lastDate"`
}

type sessionRow struct {
	ID              string     `json:"id"`
	TaskID          *string    `json:"taskId"`
	ProjectID       *string    `json:"projectId"`
	Phase           string     `json:"phase"`
	DurationMinutes int        `json:"durationMinutes"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
	IsCompleted     bool       `json:"isCompleted"`
	Disposition     string     `json:"disposition"`
}

// csvHeader is the column order of CSV exports.
var csvHeader = []string{
	"id", "phase", "duration_minutes", "started_at", "completed_at",
	"is_completed", "disposition", "task_id", "project_id",
}

// Write exports sessions in the given format.
func Write(w io.Writer, f Format, sessions []domain.Session, exportedAt time.Time) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, sessions)
	default:
		return WriteJSON(w, sessions, exportedAt)
	}
}

// WriteJSON writes an indented JSON document with a summary header.
func WriteJSON(w io.Writer, sessions []domain.Session, exportedAt time.Time) error {
	sum := domain.Summarize(sessions)
	doc := document{
		ExportedAt:    exportedAt,
		TotalSessions: sum.TotalSessions,
		Summary: summaryRecord{
			CompletedSessions: sum.CompletedSessions,
			FocusMinutes:      sum.FocusMinutes,
			BreakMinutes:      sum.BreakMinutes,
		},
		Sessions: make([]sessionRow, 0, len(sessions)),
	}
	if sum.Span != nil {
		first, last := string(sum.Span.Start), string(sum.Span.End)
		doc.Summary.FirstDate = &first
		doc.Summary.LastDate = &last
	}
	for _, s := range sessions {
		doc.Sessions = append(doc.Sessions, sessionRow{
			ID:              s.ID,
			TaskID:          s.TaskID,
			ProjectID:       s.ProjectID,
			Phase:           string(s.Phase),
			DurationMinutes: s.DurationMinutes,
			StartedAt:       s.StartedAt,
			CompletedAt:     s.CompletedAt,
			IsCompleted:     s.IsCompleted(),
			Disposition:     string(s.Disposition),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	return nil
}

// WriteCSV writes one row per session under a fixed header.
func WriteCSV(w io.Writer, sessions []domain.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range sessions {
		completedAt := ""
		if s.CompletedAt != nil {
			completedAt = s.CompletedAt.Format(time.RFC3339)
		}
		row := []string{
			s.ID,
			string(s.Phase),
			strconv.Itoa(s.DurationMinutes),
			s.StartedAt.Format(time.RFC3339),
			completedAt,
			strconv.FormatBool(s.IsCompleted()),
			string(s.Disposition),
			deref(s.TaskID),
			deref(s.ProjectID),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write session %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
