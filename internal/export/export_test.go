package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/mintleafstudio/stickersmith/internal/assets"
	"github.com/mintleafstudio/stickersmith/internal/pack"
	"github.com/rs/zerolog"
)

type fakeBridge struct {
	installed  bool
	installErr error
	result     BridgeResult
	sendErr    error
	sent       []Payload
}

func (b *fakeBridge) IsInstalled(ctx context.Context) (bool, error) {
	return b.installed, b.installErr
}

func (b *fakeBridge) SendPack(ctx context.Context, p Payload) (BridgeResult, error) {
	b.sent = append(b.sent, p)
	return b.result, b.sendErr
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := imaging.New(64, 64, c)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// assetServer serves the same small PNG for every path
func assetServer(t *testing.T) *httptest.Server {
	t.Helper()
	data := pngBytes(t, color.NRGBA{R: 200, G: 60, B: 60, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testInput(url string, n int) pack.ExportInput {
	in := pack.ExportInput{
		Identifier:   "pack_test",
		Name:         "Test Pack",
		Publisher:    "Tester",
		TrayImageURL: url + "/tray",
	}
	for i := 0; i < n; i++ {
		in.Stickers = append(in.Stickers, pack.Sticker{
			ID:       fmt.Sprintf("s%d", i),
			ImageURL: fmt.Sprintf("%s/%d", url, i),
			Emojis:   []string{"😀"},
		})
	}
	return in
}

func newTestExporter(t *testing.T, opts Options) *Exporter {
	t.Helper()
	opts.Logger = zerolog.Nop()
	fetcher := assets.NewFetcher("", 0, assets.Retry{Attempts: 1}, zerolog.Nop())
	return New(fetcher, opts)
}

func TestSend_NotInstalled(t *testing.T) {
	srv := assetServer(t)
	bridge := &fakeBridge{installed: false}
	e := newTestExporter(t, Options{Bridge: bridge})

	res, err := e.Send(context.Background(), testInput(srv.URL, 3))
	if err == nil {
		t.Fatal("expected error when app not installed")
	}
	if res.Stage != StageFailed {
		t.Errorf("stage = %q, want %q", res.Stage, StageFailed)
	}
	if res.ErrorCode != CodeNotInstalled {
		t.Errorf("code = %q, want %q", res.ErrorCode, CodeNotInstalled)
	}
	if len(bridge.sent) != 0 {
		t.Errorf("SendPack called %d times, want 0", len(bridge.sent))
	}
}

func TestSend_TooFewStickers(t *testing.T) {
	srv := assetServer(t)
	bridge := &fakeBridge{installed: true}
	e := newTestExporter(t, Options{Bridge: bridge})

	res, _ := e.Send(context.Background(), testInput(srv.URL, 2))
	if res.ErrorCode != CodeTooFew {
		t.Errorf("code = %q, want %q", res.ErrorCode, CodeTooFew)
	}
	if len(bridge.sent) != 0 {
		t.Error("payload must not reach the bridge when validation fails")
	}
}

func TestSend_Success(t *testing.T) {
	srv := assetServer(t)
	bridge := &fakeBridge{installed: true, result: BridgeResult{Success: true, Message: "added"}}
	e := newTestExporter(t, Options{Bridge: bridge})

	res, err := e.Send(context.Background(), testInput(srv.URL, 3))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Stage != StageComplete {
		t.Errorf("stage = %q, want %q", res.Stage, StageComplete)
	}
	if len(bridge.sent) != 1 {
		t.Fatalf("SendPack called %d times, want 1", len(bridge.sent))
	}
	p := bridge.sent[0]
	if len(p.Stickers) != 3 {
		t.Errorf("payload has %d stickers, want 3", len(p.Stickers))
	}
	if len(p.TrayImage) == 0 {
		t.Error("payload missing tray image")
	}
	for i, s := range p.Stickers {
		if len(s.Data) == 0 {
			t.Errorf("sticker %d has no data", i)
		}
	}
}

func TestSend_BridgeRejection(t *testing.T) {
	srv := assetServer(t)
	bridge := &fakeBridge{
		installed: true,
		result:    BridgeResult{Success: false, Message: "user backed out", ErrorCode: "USER_CANCELLED"},
	}
	e := newTestExporter(t, Options{Bridge: bridge})

	res, err := e.Send(context.Background(), testInput(srv.URL, 3))
	if err == nil {
		t.Fatal("expected error on bridge rejection")
	}
	if res.Stage != StageFailed {
		t.Errorf("stage = %q, want %q", res.Stage, StageFailed)
	}
	if res.ErrorCode != "USER_CANCELLED" {
		t.Errorf("code = %q, want bridge-reported code preserved", res.ErrorCode)
	}
}

func TestSend_StickerFetchFailureAborts(t *testing.T) {
	good := pngBytes(t, color.NRGBA{R: 10, G: 200, B: 10, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write(good)
	}))
	defer srv.Close()

	bridge := &fakeBridge{installed: true, result: BridgeResult{Success: true}}
	e := newTestExporter(t, Options{Bridge: bridge})

	res, err := e.Send(context.Background(), testInput(srv.URL, 3))
	if err == nil {
		t.Fatal("expected error when a sticker download fails")
	}
	if !errors.Is(err, assets.ErrFetch) {
		t.Errorf("error = %v, want %v", err, assets.ErrFetch)
	}
	if res.ErrorCode != CodeFetchFailed {
		t.Errorf("code = %q, want %q", res.ErrorCode, CodeFetchFailed)
	}
	if len(bridge.sent) != 0 {
		t.Error("partial pack must not reach the bridge")
	}
}

func TestSend_ProgressMonotonic(t *testing.T) {
	srv := assetServer(t)
	var events []Event
	bridge := &fakeBridge{installed: true, result: BridgeResult{Success: true}}
	e := newTestExporter(t, Options{
		Bridge:   bridge,
		Progress: func(ev Event) { events = append(events, ev) },
	})

	if _, err := e.Send(context.Background(), testInput(srv.URL, 4)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	order := map[Stage]int{
		StageChecking:            0,
		StageDownloadingTray:     1,
		StageDownloadingStickers: 2,
		StagePreparing:           3,
		StageAdding:              4,
		StageComplete:            5,
	}
	lastStage := -1
	lastCurrent := make(map[Stage]int)
	for _, ev := range events {
		rank, ok := order[ev.Stage]
		if !ok {
			t.Fatalf("unexpected stage %q", ev.Stage)
		}
		if rank < lastStage {
			t.Errorf("stage %q emitted after a later stage", ev.Stage)
		}
		lastStage = rank
		if prev, seen := lastCurrent[ev.Stage]; seen && ev.Current < prev {
			t.Errorf("stage %q progress went backwards: %d after %d", ev.Stage, ev.Current, prev)
		}
		lastCurrent[ev.Stage] = ev.Current
	}

	if lastCurrent[StageDownloadingStickers] != 4 {
		t.Errorf("sticker stage ended at %d, want 4", lastCurrent[StageDownloadingStickers])
	}
	if events[len(events)-1].Stage != StageComplete {
		t.Errorf("final event stage = %q, want %q", events[len(events)-1].Stage, StageComplete)
	}
}

func TestSend_Cancelled(t *testing.T) {
	srv := assetServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	bridge := &fakeBridge{installed: true, result: BridgeResult{Success: true}}
	var events []Event
	e := newTestExporter(t, Options{
		Bridge: bridge,
		Progress: func(ev Event) {
			events = append(events, ev)
			// cancel mid-run, once the tray is done
			if ev.Stage == StageDownloadingTray && ev.Current == 1 {
				cancel()
			}
		},
	})

	res, err := e.Send(ctx, testInput(srv.URL, 3))
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if res.Stage != StageCancelled {
		t.Errorf("stage = %q, want %q", res.Stage, StageCancelled)
	}
	if res.ErrorCode != CodeCancelled {
		t.Errorf("code = %q, want %q", res.ErrorCode, CodeCancelled)
	}
	if len(bridge.sent) != 0 {
		t.Error("cancelled job must not reach the bridge")
	}
	if events[len(events)-1].Stage != StageCancelled {
		t.Errorf("final event stage = %q, want %q", events[len(events)-1].Stage, StageCancelled)
	}
}

func TestArchive_Success(t *testing.T) {
	srv := assetServer(t)
	dir := t.TempDir()
	e := newTestExporter(t, Options{OutDir: dir})

	res, err := e.Archive(context.Background(), testInput(srv.URL, 3))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if res.Stage != StageComplete {
		t.Errorf("stage = %q, want %q", res.Stage, StageComplete)
	}
	if res.ArchivePath == "" {
		t.Fatal("no archive path returned")
	}
	if got, want := filepath.Base(res.ArchivePath), "testpack.wasticker"; got != want {
		t.Errorf("archive name = %q, want %q", got, want)
	}
	if _, err := os.Stat(res.ArchivePath); err != nil {
		t.Errorf("archive not written: %v", err)
	}
}
