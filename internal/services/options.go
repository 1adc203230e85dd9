package services

import "time"

// Options carries the collaborators shared by the services. Zero values are
// replaced with the system clock and no-op hooks.
type Options struct {
	Clock       Clock
	Notifier    Notifier
	Audit       AuditSink
	HookTimeout time.Duration
}

func (o Options) clock() Clock {
	if o.Clock == nil {
		return SystemClock
	}
	return o.Clock
}

func (o Options) hooks() hooks {
	return newHooks(o.Notifier, o.Audit, o.HookTimeout)
}
