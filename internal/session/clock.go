package session

import "time"

// Clock abstracts wall-clock reads so timer behavior is testable
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
