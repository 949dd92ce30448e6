package event

import (
	"context"
	"errors"
)

// Multi publishes to every publisher, one failing sink does not stop the others
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt *ActivityEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
