package sim

import "log"

// LogHookBase proves the common logic for all hooks that needs to log
// information into a logger.
type LogHookBase struct {
	*log.Logger
}
