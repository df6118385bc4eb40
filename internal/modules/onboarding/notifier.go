// README: Log-backed notifier; real delivery happens in an external service.
package onboarding

import (
	"context"
	"log"

	"feastly/internal/types"
)

type LogNotifier struct{}

func (LogNotifier) NotifyCorrections(_ context.Context, kind Kind, entityID types.ID, message string) error {
	log.Printf("onboarding: corrections requested for %s %s: %s", kind, entityID, message)
	return nil
}
