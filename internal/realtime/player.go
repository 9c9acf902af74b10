package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/session"
)

const DefaultTickInterval = 100 * time.Millisecond

// Tick is broadcast on every playhead change.
type Tick struct {
	Type      string   `json:"type"`
	SessionID string   `json:"sessionId"`
	Time      float64  `json:"time"`
	Playing   bool     `json:"playing"`
	ClipID    string   `json:"clipId,omitempty"`
	TextIDs   []string `json:"textIds"`
}

// Player advances the playhead of playing sessions on a ticker and
// publishes ticks to the hub.
type Player struct {
	hub      *Hub
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewPlayer(hub *Hub, interval time.Duration, logger *slog.Logger) *Player {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Player{hub: hub, interval: interval, logger: logger, running: make(map[string]context.CancelFunc)}
}

// Play starts playback from the current playhead. Playing an already
// playing session is a no-op. Playback at the end restarts from zero.
func (p *Player) Play(ctx context.Context, s *session.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.running[s.ID]; ok {
		return
	}

	_ = s.Update(func(st *session.State) error {
		if st.Timeline.CurrentTime() >= st.Timeline.Duration() {
			st.Timeline.SetCurrentTime(0)
		}
		return nil
	})

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.running[s.ID] = cancel
	p.wg.Add(1)
	go p.run(runCtx, s)
}

// Pause stops playback and reports whether the session was playing.
func (p *Player) Pause(sessionID string) bool {
	p.mu.Lock()
	cancel, ok := p.running[sessionID]
	delete(p.running, sessionID)
	p.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (p *Player) Playing(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.running[sessionID]
	return ok
}

// Seek moves the playhead and publishes a tick.
func (p *Player) Seek(ctx context.Context, s *session.Session, at float64) float64 {
	var tick Tick
	_ = s.Update(func(st *session.State) error {
		st.Timeline.SetCurrentTime(at)
		tick = p.tick(s.ID, st)
		return nil
	})
	tick.Playing = p.Playing(s.ID)
	p.publish(ctx, tick)
	return tick.Time
}

// PauseAll stops every playing session and returns how many were playing.
func (p *Player) PauseAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.running)
	for id, cancel := range p.running {
		cancel()
		delete(p.running, id)
	}
	return n
}

// Active returns the number of playing sessions.
func (p *Player) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}

// Stop halts every playback and waits for the tickers to exit.
func (p *Player) Stop() {
	p.PauseAll()
	p.wg.Wait()
}

func (p *Player) run(ctx context.Context, s *session.Session) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds()
			last = now

			var tick Tick
			ended := false
			_ = s.Update(func(st *session.State) error {
				t := st.Timeline.SetCurrentTime(st.Timeline.CurrentTime() + elapsed)
				ended = t >= st.Timeline.Duration()
				tick = p.tick(s.ID, st)
				return nil
			})

			if ended {
				release := p.finish(s.ID)
				tick.Type = "ended"
				p.publish(ctx, tick)
				release()
				return
			}
			tick.Playing = true
			p.publish(ctx, tick)
		}
	}
}

// finish removes the session from the running set. The returned func
// cancels the ticker context once the final tick is out.
func (p *Player) finish(sessionID string) context.CancelFunc {
	p.mu.Lock()
	defer p.mu.Unlock()
	cancel, ok := p.running[sessionID]
	if !ok {
		return func() {}
	}
	delete(p.running, sessionID)
	return cancel
}

func (p *Player) tick(sessionID string, st *session.State) Tick {
	at := st.Timeline.CurrentTime()
	t := Tick{Type: "tick", SessionID: sessionID, Time: at, TextIDs: []string{}}
	if c, ok := st.Timeline.ClipAt(editor.ClipTypeVideo, at); ok {
		t.ClipID = c.ID
	}
	for _, it := range st.Overlay.Visible(at) {
		t.TextIDs = append(t.TextIDs, it.ID)
	}
	return t
}

func (p *Player) publish(ctx context.Context, t Tick) {
	if p.hub == nil {
		return
	}
	if err := p.hub.Publish(ctx, t.SessionID, t); err != nil && ctx.Err() == nil {
		p.logger.Debug("tick publish failed", "session_id", t.SessionID, "error", err)
	}
}
