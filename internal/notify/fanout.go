package notify

import (
	"context"
	"errors"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// Fanout publishes every event to each of its publishers in order. A failing
// publisher does not stop delivery to the rest.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Publisher = Fanout(nil)
