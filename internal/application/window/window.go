package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/infrastructure/taskrunner"
)

// Window is the per-window bundle handed out by RequestSlot. Selector and Store must
// only be touched from tasks running on Loop.
type Window struct {
	Slot     int
	Identity string
	Loop     *taskrunner.Loop
	Selector *tabmodel.Selector
	Store    *tabstore.Store

	unsubscribe func()
	// releasing is set under the manager lock once ReleaseSlot has started.
	releasing bool
}

// Do runs fn on the window's control loop and waits for it.
func (w *Window) Do(ctx context.Context, fn func()) error {
	return w.Loop.Do(ctx, fn)
}

// Post queues fn on the window's control loop.
func (w *Window) Post(fn func()) bool {
	return w.Loop.Post(fn)
}

// Restore loads the window's persisted state and starts restoring it. It returns the
// number of records found; tabs keep arriving on the loop afterwards.
func (w *Window) Restore(ctx context.Context, ignoreIncognito, startAtActiveTab bool) (int, error) {
	var (
		count int
		err   error
	)
	if doErr := w.Do(ctx, func() {
		count, err = w.Store.LoadState(ctx, ignoreIncognito)
		if err != nil {
			return
		}
		err = w.Store.RestoreTabs(ctx, startAtActiveTab)
	}); doErr != nil {
		return 0, doErr
	}
	if err != nil {
		return 0, fmt.Errorf("restore slot %d: %w", w.Slot, err)
	}
	return count, nil
}

// shutdown flushes pending state, then tears the pair down and stops the loop.
func (w *Window) shutdown(ctx context.Context) error {
	var flushErr error
	doErr := w.Do(ctx, func() {
		if err := w.Store.Flush(ctx); err != nil && !errors.Is(err, tabstore.ErrInvalidState) {
			flushErr = fmt.Errorf("flush slot %d: %w", w.Slot, err)
		}
		w.Store.Destroy()
		if w.unsubscribe != nil {
			w.unsubscribe()
		}
		w.Selector.Destroy()
	})
	w.Loop.Stop()
	return errors.Join(flushErr, doErr)
}
