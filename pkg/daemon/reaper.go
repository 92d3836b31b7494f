package daemon

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/session"
)

const reapSchedule = "@every 1m"

// reaper periodically drops sessions that have been idle for longer than
// the configured timeout. A timeout of 0 keeps sessions forever.
type reaper struct {
	store *session.Store
	conf  config.Config
	cron  *cron.Cron
	now   func() time.Time
}

func newReaper(store *session.Store, conf config.Config, spec string) (*reaper, error) {
	r := &reaper{
		store: store,
		conf:  conf,
		cron:  cron.New(),
		now:   time.Now,
	}
	if _, err := r.cron.AddFunc(spec, r.reapOnce); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reaper) Start() { r.cron.Start() }

// Stop stops the schedule and waits for a running reap to finish.
func (r *reaper) Stop() { <-r.cron.Stop().Done() }

func (r *reaper) reapOnce() {
	idle := time.Duration(r.conf.SessionIdleTimeoutMinutes()) * time.Minute
	reaped := r.store.ReapIdle(r.now(), idle)
	if len(reaped) > 0 {
		logrus.WithFields(logrus.Fields{
			"sessions": reaped,
			"idle":     idle.String(),
		}).Info("reaped idle sessions")
	}
}
