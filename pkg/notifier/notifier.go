package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/debridav/debridav/internal/config"
	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/internal/request"
	"github.com/debridav/debridav/pkg/vfs"
)

// notifier.go fires a fire-and-forget Jellyfin library-refresh call after a
// non-empty reconciler diff (§4.J step 5, §6 outbound notify contract),
// gated on all three Jellyfin variables being set.

type update struct {
	Path       string `json:"Path"`
	UpdateType string `json:"UpdateType"`
}

type body struct {
	Updates []update `json:"Updates"`
}

type Notifier struct {
	cfg  *config.Config
	http *request.Client
	log  zerolog.Logger
}

func New(cfg *config.Config) *Notifier {
	return &Notifier{
		cfg: cfg,
		http: request.New(
			request.WithTimeout(10 * time.Second),
			request.WithHeaders(map[string]string{
				"X-Emby-Token": cfg.JellyfinAPIKey,
			}),
		),
		log: logger.New("notifier"),
	}
}

func updateType(t vfs.ChangeType) string {
	switch t {
	case vfs.Created:
		return "Created"
	case vfs.Modified:
		return "Modified"
	default:
		return "Deleted"
	}
}

// Notify pings Jellyfin with the changed paths from one diff, fire-and-forget
// in its own goroutine. Errors are logged, never surfaced: a missed refresh
// just means Jellyfin notices the change on its own next scheduled scan.
func (n *Notifier) Notify(changes []vfs.Change) {
	if !n.cfg.NotifierEnabled() || len(changes) == 0 {
		return
	}
	go n.send(changes)
}

func (n *Notifier) send(changes []vfs.Change) {
	updates := make([]update, 0, len(changes))
	for _, c := range changes {
		updates = append(updates, update{
			Path:       path.Join(n.cfg.JellyfinRcloneMountPath, c.Path),
			UpdateType: updateType(c.Type),
		})
	}

	payload, err := json.Marshal(body{Updates: updates})
	if err != nil {
		n.log.Warn().Err(err).Msg("notifier: encoding body failed")
		return
	}

	url := fmt.Sprintf("%s/Library/Media/Updated", n.cfg.JellyfinURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		n.log.Warn().Err(err).Msg("notifier: building request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := n.http.Do(req); err != nil {
		n.log.Warn().Err(err).Msg("notifier: jellyfin refresh failed")
		return
	}
	n.log.Debug().Int("changes", len(changes)).Msg("notifier: jellyfin library refresh requested")
}
