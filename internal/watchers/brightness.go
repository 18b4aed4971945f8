package watchers

import (
	"context"
	"time"

	"github.com/hoppxi/backlighter/pkg/brightness"
	"github.com/rs/zerolog"
)

// BrightnessWatcher reports the percentage of one device whenever it changes.
// It only reads; it never adjusts the level.
type BrightnessWatcher struct {
	Accessor *brightness.Accessor
	Device   brightness.Device
	Interval time.Duration
	// Sources trigger an immediate re-read in addition to the polling ticker.
	Sources []<-chan struct{}
	Report  func(pct int)
	Log     zerolog.Logger
}

// Run reports the current percentage, then every change, until ctx ends or a
// read fails.
func (w *BrightnessWatcher) Run(ctx context.Context) error {
	last, err := w.Accessor.GetPercentage(w.Device)
	if err != nil {
		return err
	}
	w.Report(last)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	events := merge(ctx, w.Sources)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-events:
			w.Log.Debug().Str("device", w.Device.Name).Msg("watch: change event")
		}

		pct, err := w.Accessor.GetPercentage(w.Device)
		if err != nil {
			return err
		}
		if pct != last {
			last = pct
			w.Report(pct)
		}
	}
}

// merge fans all sources into one channel that holds at most one pending event.
func merge(ctx context.Context, sources []<-chan struct{}) <-chan struct{} {
	out := make(chan struct{}, 1)
	for _, src := range sources {
		if src == nil {
			continue
		}
		go func(src <-chan struct{}) {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-src:
					if !ok {
						return
					}
					select {
					case out <- struct{}{}:
					default:
					}
				}
			}
		}(src)
	}
	return out
}
