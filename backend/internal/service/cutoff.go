package service

import (
	"time"

	"github.com/itchan-dev/forum/shared/domain"
)

// CutoffPolicy decides how far back read state is tracked for a user.
// Posts at or before the cutoff are always considered read.
type CutoffPolicy struct {
	window time.Duration
	now    func() time.Time
}

func NewCutoffPolicy(window time.Duration) *CutoffPolicy {
	return &CutoffPolicy{window: window, now: time.Now}
}

// Date returns the latest of the forum-wide window start, the user's join date
// and their own "mark everything read" cutoff.
func (p *CutoffPolicy) Date(user *domain.User) time.Time {
	cutoff := p.now().Add(-p.window)
	if user.IsAnonymous() {
		return cutoff
	}
	if user.JoinedOn.After(cutoff) {
		cutoff = user.JoinedOn
	}
	if user.ReadCutoff != nil && user.ReadCutoff.After(cutoff) {
		cutoff = *user.ReadCutoff
	}
	return cutoff
}
