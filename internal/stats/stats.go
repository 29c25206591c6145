package stats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/biswa/bingo-signal/internal/models"
)

// Source supplies the rooms to sample. *handlers.Handler implements it.
type Source interface {
	Rooms() ([]models.RoomView, error)
}

type Snapshot struct {
	Rooms         int                       `json:"rooms"`
	Players       int                       `json:"players"`
	ByStatus      map[models.GameStatus]int `json:"byStatus"`
	NumbersCalled int                       `json:"numbersCalled"`
	SampledAt     time.Time                 `json:"sampledAt"`
}

type Manager struct {
	mu       sync.RWMutex
	source   Source
	latest   Snapshot
	interval time.Duration
	logger   *slog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

func New(source Source, interval time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		source:   source,
		interval: interval,
		logger:   logger.With("component", "stats"),
		stopChan: make(chan struct{}),
	}
}

func (m *Manager) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snap, err := m.Sample()
				if err != nil {
					m.logger.Warn("sample failed", "error", err)
					continue
				}
				m.logger.Info("rooms sampled", "rooms", snap.Rooms, "players", snap.Players, "playing", snap.ByStatus[models.StatusPlaying])
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Sample reads the source now and records the result as the latest snapshot.
func (m *Manager) Sample() (Snapshot, error) {
	views, err := m.source.Rooms()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Summarize(views, time.Now())

	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()
	return snap, nil
}

// Latest returns the most recent snapshot, sampling first if none exists yet.
func (m *Manager) Latest() (Snapshot, error) {
	m.mu.RLock()
	snap := m.latest
	m.mu.RUnlock()

	if snap.SampledAt.IsZero() {
		return m.Sample()
	}
	return snap, nil
}

func Summarize(views []models.RoomView, now time.Time) Snapshot {
	snap := Snapshot{
		Rooms: len(views),
		ByStatus: map[models.GameStatus]int{
			models.StatusSetup:    0,
			models.StatusPlaying:  0,
			models.StatusFinished: 0,
		},
		SampledAt: now,
	}
	for _, v := range views {
		snap.Players += len(v.Players)
		snap.ByStatus[v.GameStatus]++
		snap.NumbersCalled += len(v.CalledNumbers)
	}
	return snap
}
