package repair

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/pkg/debrid"
)

// repair.go implements the repair state machine (§4.I), adapted from the
// teacher's add/select/delete magnet-reinsertion sequence into an explicit
// Healthy/Broken/Repairing/Failed machine the VFS builder consults through
// ShouldHide.

type State int

const (
	Healthy State = iota
	Broken
	Repairing
	Failed
)

type Health struct {
	State      State
	LastChange time.Time
}

// Manager tracks repair state per torrent id behind a single-writer,
// many-reader map and drives the repair sequence against the debrid
// client.
type Manager struct {
	mu     sync.RWMutex
	health map[string]Health
	debrid *debrid.Client
	log    zerolog.Logger
}

func New(d *debrid.Client) *Manager {
	return &Manager{
		health: make(map[string]Health),
		debrid: d,
		log:    logger.New("repair"),
	}
}

// ShouldHide reports whether the VFS builder must omit this torrent id.
func (m *Manager) ShouldHide(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.health[id]
	if !ok {
		return false
	}
	return h.State == Broken || h.State == Repairing || h.State == Failed
}

// MarkBroken transitions a healthy torrent to Broken. A no-op once it's
// already broken, repairing, or failed, so concurrent readers can't race
// the transition into re-triggering repair.
func (m *Manager) MarkBroken(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.health[id]; ok && h.State != Healthy {
		return
	}
	m.health[id] = Health{State: Broken, LastChange: time.Now()}
}

// ClearHealthy drops all repair bookkeeping for a torrent id, whatever its
// state. The reconciler calls it once the id has vanished from inventory.
func (m *Manager) ClearHealthy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.health, id)
}

// SpawnRepair launches repair_by_id in the background. Callers that
// trigger it from a read path must not block on the outcome.
func (m *Manager) SpawnRepair(id string) {
	go m.repair(context.Background(), id)
}

func (m *Manager) startRepairing(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.health[id]
	if !ok || h.State != Broken {
		return false
	}
	h.State = Repairing
	h.LastChange = time.Now()
	m.health[id] = h
	return true
}

func (m *Manager) fail(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health[id] = Health{State: Failed, LastChange: time.Now()}
}

// repair implements repair_by_id's sequence: preserve the magnet, delete
// the broken torrent, re-add, re-select every file, and clear the hide on
// success.
func (m *Manager) repair(ctx context.Context, id string) {
	if !m.startRepairing(id) {
		return
	}

	item, err := m.debrid.GetItem(ctx, id)
	if err != nil {
		m.log.Warn().Str("id", id).Err(err).Msg("repair: item gone, giving up")
		m.fail(id)
		return
	}

	magnet := fmt.Sprintf("magnet:?xt=urn:btih:%s", item.Hash)
	m.log.Info().Str("id", id).Str("magnet", magnet).Msg("repair: preserved magnet before delete")

	if err := m.debrid.Delete(ctx, id); err != nil {
		m.log.Warn().Str("id", id).Err(err).Msg("repair: delete failed")
		m.fail(id)
		return
	}

	newID, err := m.debrid.AddMagnet(ctx, item.Hash)
	if err != nil {
		m.log.Warn().Str("id", id).Err(err).Msg("repair: add-magnet failed")
		m.fail(id)
		return
	}

	allFileIDs := make([]int, 0, len(item.Files))
	for _, f := range item.Files {
		allFileIDs = append(allFileIDs, f.ID)
	}
	if err := m.debrid.SelectFiles(ctx, newID, allFileIDs); err != nil {
		m.log.Warn().Str("id", id).Str("newId", newID).Err(err).Msg("repair: select-files failed")
		m.fail(id)
		return
	}

	m.log.Info().Str("oldId", id).Str("newId", newID).Msg("repair succeeded, hide cleared")
	m.mu.Lock()
	delete(m.health, id)
	m.mu.Unlock()
}
