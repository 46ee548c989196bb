package domain

// PersistedTimer is the part of the timer that survives a restart.
type PersistedTimer struct {
	Phase                    Phase
	CompletedSessionsInCycle int
}

// PersistedState is the restore DTO written between runs. Run state,
// remaining time, selection and the armed session are deliberately absent:
// a restart always comes back idle with durations recomputed from Settings.
//
// Revision counts saves. Stores bump it on every write so a process can tell
// whether someone else saved since it last looked.
type PersistedState struct {
	Revision int64
	Settings *Settings
	Sessions []Session
	Timer    *PersistedTimer
}
