package ports

import "github.com/xvierd/pomo/internal/domain"

// PhaseNotifier is told when a countdown reaches zero.
// This is a driven port (implemented by adapters). The timer core never
// calls it; the drivers that own the tick loop do.
type PhaseNotifier interface {
	NotifyPhaseComplete(phase domain.Phase, settings domain.Settings) error
}
