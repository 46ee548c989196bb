package storage

import (
	"encoding/json"
	"time"

	"github.com/xvierd/pomo/internal/domain"
)

// stateRecord is the JSON layout of the persisted blob.
type stateRecord struct {
	Revision int64           `json:"revision,omitempty"`
	Settings *settingsRecord `json:"settings,omitempty"`
	Sessions []sessionRecord `json:"sessions"`
	Timer    *timerRecord    `json:"timer,omitempty"`
}

type settingsRecord struct {
	WorkDuration            int     `json:"workDuration"`
	ShortBreakDuration      int     `json:"shortBreakDuration"`
	LongBreakDuration       int     `json:"longBreakDuration"`
	SessionsBeforeLongBreak int     `json:"sessionsBeforeLongBreak"`
	AutoStartBreaks         bool    `json:"autoStartBreaks"`
	AutoStartWork           bool    `json:"autoStartWork"`
	SoundEnabled            bool    `json:"soundEnabled"`
	NotificationEnabled     bool    `json:"notificationEnabled"`
	VibrationEnabled        bool    `json:"vibrationEnabled"`
	Volume                  float64 `json:"volume"`
}

type sessionRecord struct {
	ID              string     `json:"id"`
	TaskID          *string    `json:"taskId,omitempty"`
	ProjectID       *string    `json:"projectId,omitempty"`
	Phase           string     `json:"phase"`
	DurationMinutes int        `json:"durationMinutes"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	IsCompleted     bool       `json:"isCompleted"`
	// Disposition is absent in blobs written before it existed.
	Disposition string `json:"disposition,omitempty"`
}

type timerRecord struct {
	Phase                    string `json:"phase"`
	CompletedSessionsInCycle int    `json:"completedSessionsInCycle"`
}

func encodeState(state *domain.PersistedState) ([]byte, error) {
	rec := stateRecord{Sessions: []sessionRecord{}}
	if state == nil {
		return json.Marshal(rec)
	}
	rec.Revision = state.Revision

	if s := state.Settings; s != nil {
		rec.Settings = &settingsRecord{
			WorkDuration:            s.WorkDuration,
			ShortBreakDuration:      s.ShortBreakDuration,
			LongBreakDuration:       s.LongBreakDuration,
			SessionsBeforeLongBreak: s.SessionsBeforeLongBreak,
			AutoStartBreaks:         s.AutoStartBreaks,
			AutoStartWork:           s.AutoStartWork,
			SoundEnabled:            s.SoundEnabled,
			NotificationEnabled:     s.NotificationEnabled,
			VibrationEnabled:        s.VibrationEnabled,
			Volume:                  s.Volume,
		}
	}
	for _, s := range state.Sessions {
		rec.Sessions = append(rec.Sessions, sessionRecord{
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
	if t := state.Timer; t != nil {
		rec.Timer = &timerRecord{
			Phase:                    string(t.Phase),
			CompletedSessionsInCycle: t.CompletedSessionsInCycle,
		}
	}
	return json.Marshal(rec)
}

func decodeState(data []byte) (*domain.PersistedState, error) {
	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	state := &domain.PersistedState{Revision: rec.Revision}
	if s := rec.Settings; s != nil {
		state.Settings = &domain.Settings{
			WorkDuration:            s.WorkDuration,
			ShortBreakDuration:      s.ShortBreakDuration,
			LongBreakDuration:       s.LongBreakDuration,
			SessionsBeforeLongBreak: s.SessionsBeforeLongBreak,
			AutoStartBreaks:         s.AutoStartBreaks,
			AutoStartWork:           s.AutoStartWork,
			SoundEnabled:            s.SoundEnabled,
			NotificationEnabled:     s.NotificationEnabled,
			VibrationEnabled:        s.VibrationEnabled,
			Volume:                  s.Volume,
		}
	}
	for _, r := range rec.Sessions {
		state.Sessions = append(state.Sessions, domain.Session{
			ID:              r.ID,
			TaskID:          r.TaskID,
			ProjectID:       r.ProjectID,
			Phase:           domain.Phase(r.Phase),
			DurationMinutes: r.DurationMinutes,
			StartedAt:       r.StartedAt,
			CompletedAt:     r.CompletedAt,
			Disposition:     r.disposition(),
		})
	}
	if t := rec.Timer; t != nil {
		state.Timer = &domain.PersistedTimer{
			Phase:                    domain.Phase(t.Phase),
			CompletedSessionsInCycle: t.CompletedSessionsInCycle,
		}
	}
	return state, nil
}

// disposition falls back to the boolean flag for legacy and unknown values.
func (r sessionRecord) disposition() domain.Disposition {
	d := domain.Disposition(r.Disposition)
	for _, valid := range domain.ValidDispositions {
		if d == valid {
			return d
		}
	}
	switch {
	case r.IsCompleted:
		return domain.DispositionCompleted
	case r.CompletedAt != nil:
		// Older blobs stamp skips with a completion time but no flag.
		return domain.DispositionSkipped
	default:
		return domain.DispositionOpen
	}
}
