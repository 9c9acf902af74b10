package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

const refreshInterval = 2 * time.Second

// Status is what the tray menu shows.
type Status struct {
	Addr     string
	Sessions int
	Playing  int
	Clients  int
}

// StatusFunc reports the current server status.
type StatusFunc func(ctx context.Context) Status

type Tray struct {
	status   StatusFunc
	pauseAll func() int
	logger   *slog.Logger

	addrItem     *systray.MenuItem
	sessionsItem *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu sync.Mutex

	onOpen func() error
	onQuit func()
	stop   chan struct{}
}

type TrayConfig struct {
	Status   StatusFunc
	PauseAll func() int
	Logger   *slog.Logger
	OnOpen   func() error
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		status:   cfg.Status,
		pauseAll: cfg.PauseAll,
		logger:   cfg.Logger,
		onOpen:   cfg.OnOpen,
		onQuit:   cfg.OnQuit,
		stop:     make(chan struct{}),
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Reelcut")
	systray.SetTooltip("Reelcut editor service")

	t.addrItem = systray.AddMenuItem("Server: starting", "Editor API address")
	t.addrItem.Disable()

	t.sessionsItem = systray.AddMenuItem("Sessions: 0", "Open editing sessions")
	t.sessionsItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause All Playback", "Stop every playing session")
	openItem := systray.AddMenuItem("Open Data Folder", "Show snapshots and exports")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Reelcut")

	go t.refreshLoop()

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				t.handlePauseAll()
			case <-openItem.ClickedCh:
				t.handleOpen()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	close(t.stop)
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	t.Refresh()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.Refresh()
		}
	}
}

// Refresh re-reads the status and updates the menu.
func (t *Tray) Refresh() {
	if t.status == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	st := t.status(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	addr, sessions := menuTitles(st)
	t.addrItem.SetTitle(addr)
	t.sessionsItem.SetTitle(sessions)
	if st.Playing > 0 {
		t.pauseItem.Enable()
	} else {
		t.pauseItem.Disable()
	}
}

func (t *Tray) handlePauseAll() {
	if t.pauseAll == nil {
		return
	}
	n := t.pauseAll()
	t.logger.Info("playback paused from tray", "sessions", n)
	t.Refresh()
}

func (t *Tray) handleOpen() {
	if t.onOpen != nil {
		if err := t.onOpen(); err != nil {
			t.logger.Error("failed to open data folder", "error", err)
		}
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}

func menuTitles(st Status) (string, string) {
	addr := "Server: " + st.Addr
	if st.Addr == "" {
		addr = "Server: not listening"
	}
	sessions := fmt.Sprintf("Sessions: %d", st.Sessions)
	if st.Playing > 0 {
		sessions += fmt.Sprintf(" (%d playing)", st.Playing)
	}
	if st.Clients > 0 {
		sessions += fmt.Sprintf(", %d viewers", st.Clients)
	}
	return addr, sessions
}
