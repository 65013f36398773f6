package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/debridav/debridav/internal/config"
	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/identifier"
	"github.com/debridav/debridav/pkg/notifier"
	"github.com/debridav/debridav/pkg/persistence"
	"github.com/debridav/debridav/pkg/repair"
	"github.com/debridav/debridav/pkg/vfs"
	"github.com/debridav/debridav/pkg/worker"
)

// reconciler.go drives the scan loop (§4.J), adapted from the teacher's
// pkg/sync.Service.Watch time.Sleep loop onto gocron/v2, and from its
// Run()'s sequential fetch/match/build/sync pipeline onto the spec's
// fetch/identify/persist/build/diff/swap sequence.

const identifyConcurrency = 8

// Reconciler owns the live VFS tree and runs the periodic scan cycle. It
// satisfies pkg/webdavfs.TreeSource via Current.
type Reconciler struct {
	cfg      *config.Config
	debrid   *debrid.Client
	metadata identifier.MetadataSearcher
	store    *persistence.Store
	repair   *repair.Manager
	notifier *notifier.Notifier
	log      zerolog.Logger

	mu   sync.RWMutex
	tree *vfs.Tree
}

func New(cfg *config.Config, d *debrid.Client, m identifier.MetadataSearcher, store *persistence.Store, r *repair.Manager, n *notifier.Notifier) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		debrid:   d,
		metadata: m,
		store:    store,
		repair:   r,
		notifier: n,
		log:      logger.New("reconciler"),
		tree:     &vfs.Tree{Root: vfs.NewDirectory(), CreatedAt: time.Now().UTC()},
	}
}

// Current returns the live tree snapshot. Safe for concurrent readers.
func (r *Reconciler) Current() *vfs.Tree {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

// Start runs one cycle immediately, then schedules it every ScanIntervalSecs
// via gocron until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) error {
	r.RunCycle(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Duration(r.cfg.ScanIntervalSecs)*time.Second),
		gocron.NewTask(func() { r.RunCycle(ctx) }),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	go func() {
		<-ctx.Done()
		_ = scheduler.Shutdown()
	}()
	return nil
}

// RunCycle implements the 5-step scan (§4.J). Any stage error is logged and
// the cycle ends; the previous tree remains live.
func (r *Reconciler) RunCycle(ctx context.Context) {
	start := time.Now()
	r.log.Info().Msg("reconciler: cycle starting")

	inventory, err := r.debrid.ListInventory(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("reconciler: fetching inventory failed, cycle aborted")
		return
	}

	persisted, err := r.store.ReadAll()
	if err != nil {
		r.log.Error().Err(err).Msg("reconciler: reading persisted identifications failed, cycle aborted")
		return
	}

	r.forgetVanished(inventory, persisted)

	items := r.identifyUnseen(ctx, inventory, persisted)

	buildItems := make([]vfs.Item, 0, len(items))
	for _, it := range items {
		if it.Torrent.Status != debrid.StatusDownloaded {
			continue
		}
		buildItems = append(buildItems, vfs.Item{Torrent: it.Torrent, Identification: it.Identification})
	}

	newTree := vfs.Build(ctx, buildItems, r.debrid.Unrestrict, r.repair.ShouldHide)

	r.mu.RLock()
	oldTree := r.tree
	r.mu.RUnlock()

	diff := vfs.DiffTrees(oldTree, newTree)

	if len(diff) > 0 {
		r.mu.Lock()
		r.tree = newTree
		r.mu.Unlock()

		r.notifier.Notify(diff)
	}

	r.log.Info().
		Int("items", len(buildItems)).
		Int("changes", len(diff)).
		Dur("duration", time.Since(start)).
		Msg("reconciler: cycle complete")
}

// forgetVanished drops persisted identifications for torrent ids no longer
// present in inventory (§3 Lifecycles: "persisted indefinitely until that id
// disappears") and clears any stale repair bookkeeping for them.
func (r *Reconciler) forgetVanished(inventory []debrid.TorrentInventoryItem, persisted map[string]persistence.Entry) {
	present := make(map[string]bool, len(inventory))
	for _, item := range inventory {
		present[item.ID] = true
	}
	for id := range persisted {
		if present[id] {
			continue
		}
		if err := r.store.Delete(id); err != nil {
			r.log.Warn().Str("id", id).Err(err).Msg("reconciler: deleting vanished identification failed")
			continue
		}
		delete(persisted, id)
		r.repair.ClearHealthy(id)
	}
}

type matched struct {
	Torrent        debrid.TorrentInventoryItem
	Identification identifier.Identification
}

// identifyUnseen resolves a MediaIdentification for every inventory item
// missing one, persisting new results, and reuses persisted ones otherwise.
// Identification itself runs with bounded concurrency (§2 component D share,
// §5 worker pool).
func (r *Reconciler) identifyUnseen(ctx context.Context, inventory []debrid.TorrentInventoryItem, persisted map[string]persistence.Entry) []matched {
	var toIdentify []debrid.TorrentInventoryItem
	results := make([]matched, 0, len(inventory))

	for _, item := range inventory {
		if entry, ok := persisted[item.ID]; ok {
			results = append(results, matched{Torrent: item, Identification: entry.Identification})
			continue
		}
		toIdentify = append(toIdentify, item)
	}

	if len(toIdentify) == 0 {
		return results
	}

	type identifyOutcome struct {
		item matched
		ok   bool
	}

	outcomes, errs := worker.ProcessWithProgress(toIdentify, identifyConcurrency, func(item debrid.TorrentInventoryItem) (identifyOutcome, error) {
		filename := primaryFilename(item)
		siblings := siblingPaths(item)

		ident, err := identifier.Identify(ctx, r.metadata, filename, siblings)
		if err != nil {
			return identifyOutcome{}, err
		}
		if ident == nil {
			return identifyOutcome{}, nil
		}

		entry := persistence.Entry{Item: item, Identification: *ident}
		if err := r.store.Insert(item.ID, entry); err != nil {
			r.log.Warn().Str("id", item.ID).Err(err).Msg("reconciler: persisting identification failed")
		}

		return identifyOutcome{item: matched{Torrent: item, Identification: *ident}, ok: true}, nil
	}, func(completed, total int) {
		if completed == total {
			r.log.Debug().Int("identified", total).Msg("reconciler: identification pass complete")
		}
	})

	for _, err := range errs {
		r.log.Warn().Err(err).Msg("reconciler: identification failed for one item")
	}
	for _, o := range outcomes {
		if o.ok {
			results = append(results, o.item)
		}
	}

	return results
}

func primaryFilename(item debrid.TorrentInventoryItem) string {
	if selected := item.SelectedFiles(); len(selected) > 0 {
		return selected[0].Path
	}
	return item.Filename
}

func siblingPaths(item debrid.TorrentInventoryItem) []string {
	selected := item.SelectedFiles()
	paths := make([]string, 0, len(selected))
	for _, f := range selected {
		paths = append(paths, f.Path)
	}
	return paths
}
