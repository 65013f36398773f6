package debrid

import (
	"encoding/json"
	"strings"
	"time"
)

// types.go defines the inventory data model (§3), adapted from the
// teacher's pkg/realdebrid/types.go Torrent/File/Download shapes into the
// spec's TorrentInventoryItem/InventoryFile/TorrentStatus vocabulary.

// TorrentStatus classifies a torrent's lifecycle state. Unrecognized raw
// statuses are preserved as Other(raw) rather than dropped.
type TorrentStatus string

const (
	StatusDownloaded  TorrentStatus = "downloaded"
	StatusDownloading TorrentStatus = "downloading"
	StatusError       TorrentStatus = "error"
	StatusMagnetError TorrentStatus = "magnet_error"
	StatusVirus       TorrentStatus = "virus"
	StatusDead        TorrentStatus = "dead"
)

func classifyStatus(raw string) TorrentStatus {
	switch strings.ToLower(raw) {
	case "downloaded":
		return StatusDownloaded
	case "downloading", "queued", "uploading", "compressing":
		return StatusDownloading
	case "error":
		return StatusError
	case "magnet_error", "magnet_conversion":
		return StatusMagnetError
	case "virus":
		return StatusVirus
	case "dead":
		return StatusDead
	default:
		return TorrentStatus("other:" + raw)
	}
}

// IsTerminal reports whether a status will never transition further on its
// own (§6 GLOSSARY: Terminal status).
func (s TorrentStatus) IsTerminal() bool {
	switch s {
	case StatusError, StatusMagnetError, StatusVirus, StatusDead:
		return true
	default:
		return strings.HasPrefix(string(s), "other:")
	}
}

// InventoryFile is one file inside a torrent, selected or not.
type InventoryFile struct {
	ID       int
	Path     string
	Bytes    int64
	Selected bool
}

// TorrentInventoryItem is one entry in the debrid account's torrent list
// (§3).
type TorrentInventoryItem struct {
	ID       string
	Filename string
	Hash     string
	Bytes    int64
	Status   TorrentStatus
	RawStatus string
	Files    []InventoryFile
	Links    []string
	Added    time.Time
}

type wireFile struct {
	ID       int    `json:"id"`
	Path     string `json:"path"`
	Bytes    int64  `json:"bytes"`
	Selected int    `json:"selected"`
}

type wireItem struct {
	ID       string     `json:"id"`
	Filename string     `json:"filename"`
	Hash     string     `json:"hash"`
	Bytes    int64      `json:"bytes"`
	Status   string     `json:"status"`
	Files    []wireFile `json:"files"`
	Links    []string   `json:"links"`
	Added    string     `json:"added"`
}

// UnmarshalJSON classifies the raw status string into TorrentStatus on
// decode, the way the teacher's types decode Real-Debrid's wire shape.
func (t *TorrentInventoryItem) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	files := make([]InventoryFile, 0, len(w.Files))
	for _, f := range w.Files {
		files = append(files, InventoryFile{
			ID:       f.ID,
			Path:     f.Path,
			Bytes:    f.Bytes,
			Selected: f.Selected == 1,
		})
	}

	added, _ := time.Parse(time.RFC3339, w.Added)

	*t = TorrentInventoryItem{
		ID:        w.ID,
		Filename:  w.Filename,
		Hash:      w.Hash,
		Bytes:     w.Bytes,
		Status:    classifyStatus(w.Status),
		RawStatus: w.Status,
		Files:     files,
		Links:     w.Links,
		Added:     added,
	}
	return nil
}

// SelectedFiles returns only the files the account has selected for
// download, in their original order.
func (t *TorrentInventoryItem) SelectedFiles() []InventoryFile {
	out := make([]InventoryFile, 0, len(t.Files))
	for _, f := range t.Files {
		if f.Selected {
			out = append(out, f)
		}
	}
	return out
}

// LinksMatchSelection reports whether the number of unrestrictable links
// agrees with the number of selected files (§3 invariant; a mismatch means
// the VFS builder must omit the item rather than guess an alignment).
func (t *TorrentInventoryItem) LinksMatchSelection() bool {
	return len(t.Links) == len(t.SelectedFiles())
}

// UnrestrictResponse is the decoded reply from the unrestrict endpoint.
type UnrestrictResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mimeType"`
	Filesize   int64  `json:"filesize"`
	Link       string `json:"link"`
	Download   string `json:"download"`
	Streamable int    `json:"streamable"`
}

type addMagnetResponse struct {
	ID string `json:"id"`
}

type wireErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}
