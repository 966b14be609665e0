package game

import (
	"time"

	"github.com/rs/zerolog/log"
)

// countdown identifies one running ticker goroutine. The room holds at most
// one; comparing handles under the lock lets a superseded goroutine notice it
// has been replaced and exit without double-decrementing.
type countdown struct {
	stop      chan struct{}
	remaining int
}

// startCountdownLocked arms a once-per-second countdown, cancelling any
// previous handle first. Each tick broadcasts the remaining time under event;
// reaching zero invokes onExpire with the lock held.
func (r *Room) startCountdownLocked(seconds int, event string, onExpire func(*Room)) {
	r.stopCountdownLocked()
	cd := &countdown{stop: make(chan struct{}), remaining: seconds}
	r.timer = cd
	r.emitter.ToRoom(r.code, event, timerPayload{Time: cd.remaining})
	go r.runCountdown(cd, event, onExpire)
}

func (r *Room) runCountdown(cd *countdown, event string, onExpire func(*Room)) {
	t := time.NewTicker(r.tickEvery)
	defer t.Stop()
	for {
		select {
		case <-cd.stop:
			return
		case <-t.C:
			r.mu.Lock()
			if r.timer != cd {
				r.mu.Unlock()
				return
			}
			cd.remaining--
			if cd.remaining < 0 {
				cd.remaining = 0
			}
			r.emitter.ToRoom(r.code, event, timerPayload{Time: cd.remaining})
			if cd.remaining <= 0 {
				r.timer = nil
				onExpire(r)
				r.mu.Unlock()
				return
			}
			r.mu.Unlock()
		}
	}
}

func (r *Room) stopCountdownLocked() {
	if r.timer != nil {
		close(r.timer.stop)
		r.timer = nil
	}
}

// armAutoAdvanceLocked schedules the forced continuation that keeps a reveal
// from stalling when the host never clicks continue. Re-arming cancels the
// previous timer so two advances can never fire for one reveal.
func (r *Room) armAutoAdvanceLocked() {
	r.cancelAutoAdvanceLocked()
	r.autoAdvance = time.AfterFunc(r.autoAdvanceAfter, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.pendingNext {
			return
		}
		log.Info().Str("code", r.code).Msg("auto-advancing round")
		r.advanceLocked(true)
	})
}

func (r *Room) cancelAutoAdvanceLocked() {
	if r.autoAdvance != nil {
		r.autoAdvance.Stop()
		r.autoAdvance = nil
	}
}
