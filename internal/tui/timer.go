package tui

import "time"

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel counts down a focus session. It keeps no storage of its own.
type timerModel struct {
	state     timerState
	startTime time.Time
	pausedAt  time.Time
	pauseGap  time.Duration
	target    time.Duration

	taskID    string
	taskTitle string

	// Idle detection; a zero timeout disables it.
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool

	now func() time.Time
}

func newTimerModel(idleTimeout time.Duration) timerModel {
	return timerModel{
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  idleTimeout,
		now:          time.Now,
	}
}

func (t *timerModel) start(taskID, title string, target time.Duration) {
	now := t.now()
	t.state = timerRunning
	t.startTime = now
	t.pauseGap = 0
	t.target = target
	t.taskID = taskID
	t.taskTitle = title
	t.lastActivity = now
	t.isIdle = false
}

// stop ends the session and returns the focused time.
func (t *timerModel) stop() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	elapsed := t.currentElapsed()
	t.state = timerStopped
	return elapsed
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	now := t.now()
	t.pauseGap += now.Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = now
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state != timerRunning || t.idleTimeout <= 0 || t.isIdle {
		return
	}
	if t.now().Sub(t.lastActivity) > t.idleTimeout {
		t.isIdle = true
		t.pause()
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}

// remaining may go negative once the target is passed.
func (t timerModel) remaining() time.Duration {
	return t.target - t.currentElapsed()
}

func (t timerModel) finished() bool {
	return t.running() && t.remaining() <= 0
}
