package future

import (
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/utils"
)

// invokeCallback runs a user callback on its own goroutine so a slow or
// panicking callback never blocks promise fulfillment. Nil callbacks are ignored.
func invokeCallback[T any](kind string, callback func(T), value T) {
	if callback == nil {
		return
	}

	go func() {
		err := utils.CallRecovering(true, func() error {
			callback(value)

			return nil
		})
		if err != nil {
			logger.Get().Error("panic encountered in future."+kind+" callback", "error", err)
		}
	}()
}
