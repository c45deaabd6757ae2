package sync

import (
	"time"

	"github.com/0xPolygon/cdk-mmr/log"
)

// RetryHandler waits between attempts and gives up (fatal) once the attempts
// reach MaxRetryAttemptsAfterError. A negative max retries forever.
type RetryHandler struct {
	RetryAfterErrorPeriod      time.Duration
	MaxRetryAttemptsAfterError int
}

func (h *RetryHandler) Handle(funcName string, attempts int) {
	if h.MaxRetryAttemptsAfterError > -1 && attempts >= h.MaxRetryAttemptsAfterError {
		log.Fatalf(
			"%s failed too many times (%d)",
			funcName, h.MaxRetryAttemptsAfterError,
		)
	}
	time.Sleep(h.RetryAfterErrorPeriod)
}
