// Command fsmctl validates machine descriptions, renders them as Mermaid
// diagrams and drives them with events.
package main

import (
	"context"
	"os"

	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/shutdown"
)

func main() {
	ctx, handler := shutdown.SetupHandler(context.Background())

	err := newRootCmd(handler).ExecuteContext(ctx)

	handler.Shutdown()

	if err != nil {
		logger.Get(ctx).Error("fsmctl failed", "error", err)
		os.Exit(1)
	}
}
