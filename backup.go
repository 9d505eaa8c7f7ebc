package onyx

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"
)

// BackupVersion is the version written in exported backups.
const BackupVersion = "4.1"

// Backup is a portable copy of a journal. On import, only the sections
// present in the document are applied.
type Backup struct {
	History      []Trade    `json:"history"`
	ActiveTrades []Trade    `json:"activeTrades"`
	Strategies   []Strategy `json:"strategies"`
	Tags         []string   `json:"tags"`
	Profile      *Profile   `json:"profile,omitempty"`
	Timestamp    string     `json:"timestamp"`
	Version      string     `json:"version"`
}

// Backup exports the whole journal.
func (l *Ledger) Backup() Backup {
	profile := l.profile
	return Backup{
		History:      nonNil(cloneTrades(l.history)),
		ActiveTrades: nonNil(cloneTrades(l.active)),
		Strategies:   nonNil(l.Strategies()),
		Tags:         nonNil(l.Tags()),
		Profile:      &profile,
		Timestamp:    l.now().UTC().Format(time.RFC3339Nano),
		Version:      BackupVersion,
	}
}

// ApplyBackup replaces the sections of the journal present in b. An empty
// strategy list is ignored. Nothing is applied if the result would be
// inconsistent.
func (l *Ledger) ApplyBackup(b Backup) error {
	next := *l
	if b.History != nil {
		next.history = cloneTrades(b.History)
	}
	if b.ActiveTrades != nil {
		next.active = cloneTrades(b.ActiveTrades)
	}
	if len(b.Strategies) > 0 {
		next.strategies = make([]Strategy, len(b.Strategies))
		for i, s := range b.Strategies {
			next.strategies[i] = s.clone()
		}
	}
	if b.Tags != nil {
		next.tags = cloneStrings(b.Tags)
	}
	if b.Profile != nil {
		next.profile = *b.Profile
	}
	next.reindex()
	if err := next.Check(); err != nil {
		return fmt.Errorf("cannot import backup: %w", err)
	}
	*l = next
	l.logger.Info("backup imported")
	return nil
}

// RelocateImages points every journal image of the backup to a file of the
// same name in dir. An empty dir leaves references unchanged.
func (b *Backup) RelocateImages(dir string) {
	if dir == "" {
		return
	}
	for _, trades := range [][]Trade{b.History, b.ActiveTrades} {
		for i := range trades {
			for j := range trades[i].Journal {
				uris := trades[i].Journal[j].ImageURIs
				for k, uri := range uris {
					uris[k] = filepath.Join(dir, path.Base(uri))
				}
			}
		}
	}
}

// EncodeBackup writes b as indented JSON.
func EncodeBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("cannot encode backup: %w", err)
	}
	return nil
}

// importedEntry accepts the deprecated single image field of older backups.
type importedEntry struct {
	JournalEntry
	ImageURI string `json:"imageUri"`
}

type importedTrade struct {
	Trade
	Journal []importedEntry `json:"journal"`
}

// DecodeBackup reads a backup document. Journal entries carrying the legacy
// "imageUri" field are normalized to "imageUris".
func DecodeBackup(r io.Reader) (Backup, error) {
	var doc struct {
		Backup
		History      []importedTrade `json:"history"`
		ActiveTrades []importedTrade `json:"activeTrades"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Backup{}, fmt.Errorf("cannot decode backup: %w", err)
	}
	b := doc.Backup
	b.History = normalizeImported(doc.History)
	b.ActiveTrades = normalizeImported(doc.ActiveTrades)
	return b, nil
}

func normalizeImported(trades []importedTrade) []Trade {
	if trades == nil {
		return nil
	}
	res := make([]Trade, len(trades))
	for i, it := range trades {
		t := it.Trade
		t.Journal = make([]JournalEntry, len(it.Journal))
		for j, e := range it.Journal {
			entry := e.JournalEntry
			if len(entry.ImageURIs) == 0 && e.ImageURI != "" {
				entry.ImageURIs = []string{e.ImageURI}
			}
			t.Journal[j] = entry
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		res[i] = t
	}
	return res
}
