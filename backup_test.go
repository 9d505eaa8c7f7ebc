package onyx

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestBackup_RoundTrip(t *testing.T) {
	l := sampleLedger(newTestClock())

	var buf bytes.Buffer
	if err := EncodeBackup(&buf, l.Backup()); err != nil {
		t.Fatalf("EncodeBackup() error = %v", err)
	}
	b, err := DecodeBackup(&buf)
	if err != nil {
		t.Fatalf("DecodeBackup() error = %v", err)
	}
	if b.Version != BackupVersion {
		t.Errorf("Version = %q, want %q", b.Version, BackupVersion)
	}
	if b.Timestamp != "2025-03-14T10:03:00Z" {
		t.Errorf("Timestamp = %q, want %q", b.Timestamp, "2025-03-14T10:03:00Z")
	}

	restored := NewLedger()
	if err := restored.ApplyBackup(b); err != nil {
		t.Fatalf("ApplyBackup() error = %v", err)
	}
	if got, want := jsonOf(t, restored.Backup().History), jsonOf(t, l.History()); got != want {
		t.Errorf("restored history = %s, want %s", got, want)
	}
	if got, want := jsonOf(t, restored.Active()), jsonOf(t, l.Active()); got != want {
		t.Errorf("restored active = %s, want %s", got, want)
	}
	if restored.Profile() != l.Profile() {
		t.Errorf("restored profile = %+v, want %+v", restored.Profile(), l.Profile())
	}
}

func TestDecodeBackup_Legacy(t *testing.T) {
	doc := `{
  "history": [{
    "id": 1700000000000, "strategyId": "default_pa", "direction": "LONG",
    "risk": 100, "realizedProfit": 50, "percentClosed": 100, "status": "WIN",
    "isBreakeven": false, "tags": ["Trend"], "closedAt": 1700000600000,
    "journal": [
      {"timestamp": 1700000600000, "type": "CLOSE", "percentClosed": 100, "profitBanked": 50,
       "imageUri": "file:///data/user/0/app/files/charts/old.png", "note": "legacy"}
    ]
  }],
  "tags": ["Trend", "Range"],
  "timestamp": "2024-01-01T00:00:00.000Z",
  "version": "3.0"
}`
	b, err := DecodeBackup(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeBackup() error = %v", err)
	}
	entry := b.History[0].Journal[0]
	if want := []string{"file:///data/user/0/app/files/charts/old.png"}; !slices.Equal(entry.ImageURIs, want) {
		t.Errorf("ImageURIs = %v, want %v", entry.ImageURIs, want)
	}
	if entry.Note != "legacy" {
		t.Errorf("Note = %q, want %q", entry.Note, "legacy")
	}
	if b.ActiveTrades != nil || b.Strategies != nil || b.Profile != nil {
		t.Errorf("absent sections decoded as present: %+v", b)
	}

	dir := filepath.Join("home", "charts")
	b.RelocateImages(dir)
	if got, want := b.History[0].Journal[0].ImageURIs[0], filepath.Join(dir, "old.png"); got != want {
		t.Errorf("relocated image = %q, want %q", got, want)
	}

	// only present sections replace the journal.
	l := NewLedger()
	running := l.Execute("SHORT", Money{})
	if err := l.ApplyBackup(b); err != nil {
		t.Fatalf("ApplyBackup() error = %v", err)
	}
	if len(l.History()) != 1 || len(l.Active()) != 1 || l.Active()[0].ID != running.ID {
		t.Errorf("ApplyBackup() history = %d, active = %d, want 1 imported and the running trade kept", len(l.History()), len(l.Active()))
	}
	if !slices.Equal(l.Tags(), []string{"Trend", "Range"}) {
		t.Errorf("Tags() = %v, want the imported ones", l.Tags())
	}
	if l.ActiveStrategy().ID != DefaultStrategyID || l.Profile() != DefaultProfile() {
		t.Errorf("strategies or profile changed without a section")
	}
}

func TestApplyBackup_Inconsistent(t *testing.T) {
	l := NewLedger()
	kept := l.Execute("LONG", Money{})
	dup := kept
	dup.Status = Win
	dup.PercentClosed = 100

	err := l.ApplyBackup(Backup{History: []Trade{dup}})
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("ApplyBackup() error = %v, want %v", err, ErrInvariant)
	}
	if len(l.History()) != 0 {
		t.Errorf("ApplyBackup() applied an inconsistent backup")
	}
}

func TestRelocateImages_EmptyDir(t *testing.T) {
	b := Backup{ActiveTrades: []Trade{{Journal: []JournalEntry{{ImageURIs: []string{"content://x/y.png"}}}}}}
	b.RelocateImages("")
	if got := b.ActiveTrades[0].Journal[0].ImageURIs[0]; got != "content://x/y.png" {
		t.Errorf("RelocateImages(\"\") changed %q", got)
	}
}

func TestDecodeBackup_AppDocument(t *testing.T) {
	doc := `{
  "history": [],
  "activeTrades": [{
    "id": 1710410400000, "strategyId": "1710000000000", "direction": "SHORT",
    "dateStr": "3/14/2024", "timeStr": "10:00 AM", "risk": 50, "realizedProfit": 20,
    "percentClosed": 50, "status": "RUNNING", "isBreakeven": true, "tags": [],
    "journal": [{"timestamp": 1710411000000, "type": "PARTIAL", "percentClosed": 50, "profitBanked": 20, "imageUris": [], "note": ""}]
  }],
  "strategies": [
    {"id": "default_pa", "name": "Price Action Basics", "risk": 100, "rules": [
      {"id": "1", "text": "Identify Key Level (S/R)"},
      {"id": "2", "text": "Wait for Rejection Candle"}
    ]},
    {"id": "1710000000000", "name": "Model: Trend + Impulse", "risk": 50, "rules": [
      {"id": "17100000000000", "text": "Trend"},
      {"id": "17100000000001", "text": "Impulse"}
    ]}
  ],
  "tags": ["A+ Setup", "Trend", "Impulse"],
  "profile": {"name": "Sam", "goal": "Consistency", "mantra": "Patience", "biometricsEnabled": true},
  "imageBundle": {},
  "timestamp": "2024-03-14T12:00:00.000Z",
  "version": "4.1"
}`
	b, err := DecodeBackup(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeBackup() error = %v", err)
	}
	if len(b.Strategies) != 2 {
		t.Fatalf("DecodeBackup() strategies = %d, want 2", len(b.Strategies))
	}
	if want := []Rule{{ID: "17100000000000", Text: "Trend"}, {ID: "17100000000001", Text: "Impulse"}}; !slices.Equal(b.Strategies[1].Rules, want) {
		t.Errorf("model rules = %v, want %v", b.Strategies[1].Rules, want)
	}

	l := NewLedger()
	if err := l.ApplyBackup(b); err != nil {
		t.Fatalf("ApplyBackup() error = %v", err)
	}
	if len(l.Active()) != 1 || !l.Active()[0].IsBreakeven || l.Active()[0].DateStr != "3/14/2024" {
		t.Errorf("Active() = %+v, want the imported running trade", l.Active())
	}
	if got := l.Profile().Name; got != "Sam" {
		t.Errorf("Profile().Name = %q, want %q", got, "Sam")
	}
}

func TestRule_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		in      string
		want    Rule
		wantErr bool
	}{
		{in: `{"id":"1","text":"Identify Key Level (S/R)"}`, want: Rule{ID: "1", Text: "Identify Key Level (S/R)"}},
		{in: `{"id":3,"text":"Confirm Trend Direction"}`, want: Rule{ID: "3", Text: "Confirm Trend Direction"}},
		{in: `{"text":"no id"}`, want: Rule{Text: "no id"}},
		{in: `{"id":true,"text":"x"}`, wantErr: true},
	}
	for _, tc := range testCases {
		var got Rule
		err := json.Unmarshal([]byte(tc.in), &got)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
