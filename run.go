package mqttws

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunUntil drives the service loop until ctx is canceled, then disconnects
// gracefully within disconnectBudget. One goroutine watches ctx and
// signals the stop channel Run already understands; the other owns
// ServiceOnce exclusively, so only one goroutine ever calls it even
// across the shutdown transition.
func (c *Client) RunUntil(ctx context.Context, disconnectBudget time.Duration) error {
	group, ctx := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	group.Go(func() error {
		<-ctx.Done()
		close(stop)
		return nil
	})
	group.Go(func() error {
		if err := c.Run(stop); err != nil {
			return err
		}
		return c.Disconnect(disconnectBudget)
	})

	return group.Wait()
}
