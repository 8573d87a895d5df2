// Package export drives the end-to-end sticker pack transfer: downloading
// and preparing every asset, then either handing the pack to a native
// transfer bridge or writing a .wasticker archive. One Exporter run is one
// job; prepared assets belong to that job alone and are discarded with it.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/mintleafstudio/stickersmith/internal/assets"
	"github.com/mintleafstudio/stickersmith/internal/codec"
	"github.com/mintleafstudio/stickersmith/internal/pack"
	"github.com/mintleafstudio/stickersmith/internal/raster"
	"github.com/mintleafstudio/stickersmith/internal/tray"
	"github.com/rs/zerolog"
)

// Stage identifies a step of the transfer state machine
type Stage string

const (
	StageChecking            Stage = "checking"
	StageDownloadingTray     Stage = "downloading_tray"
	StageDownloadingStickers Stage = "downloading_stickers"
	StagePreparing           Stage = "preparing"
	StageAdding              Stage = "adding"
	StageArchiving           Stage = "archiving"
	StageComplete            Stage = "complete"
	StageFailed              Stage = "failed"
	StageCancelled           Stage = "cancelled"
)

// Error codes carried by failed results
const (
	CodeNotInstalled  = "WHATSAPP_NOT_INSTALLED"
	CodeTooFew        = "INSUFFICIENT_STICKERS"
	CodeTooMany       = "TOO_MANY_STICKERS"
	CodeInvalid       = "INVALID_STICKER"
	CodeFetchFailed   = "FETCH_FAILED"
	CodeEncodeFailed  = "ENCODE_FAILED"
	CodeBridgeError   = "BRIDGE_ERROR"
	CodeArchiveFailed = "ARCHIVE_FAILED"
	CodeCancelled     = "CANCELLED"
)

// ErrNotInstalled is returned when the destination app is missing
var ErrNotInstalled = errors.New("WhatsApp is not installed on this device")

// Event is one progress notification. Current/Total reset at each stage;
// Current never decreases within a stage.
type Event struct {
	Stage   Stage
	Current int
	Total   int
	Message string
}

// ProgressFunc receives events synchronously at every stage transition and
// at each completed sticker. The exporter never calls it concurrently.
type ProgressFunc func(Event)

// PreparedSticker is one transfer-ready sticker
type PreparedSticker struct {
	Data   []byte
	Emojis []string
}

// Payload is the assembled pack handed to a bridge or archived
type Payload struct {
	Identifier              string
	Name                    string
	Publisher               string
	TrayImage               []byte
	Stickers                []PreparedSticker
	PublisherEmail          string
	PublisherWebsite        string
	PrivacyPolicyWebsite    string
	LicenseAgreementWebsite string
}

// BridgeResult is the outcome reported by a native transfer bridge
type BridgeResult struct {
	Success   bool
	Message   string
	ErrorCode string
}

// Bridge is the platform hand-off for native pack transfer
type Bridge interface {
	IsInstalled(ctx context.Context) (bool, error)
	SendPack(ctx context.Context, p Payload) (BridgeResult, error)
}

// Result is the terminal outcome of one export job
type Result struct {
	Stage       Stage
	Message     string
	ErrorCode   string
	ArchivePath string
}

// Options configures an Exporter
type Options struct {
	Bridge     Bridge       // required for Send
	Progress   ProgressFunc // optional
	Logger     zerolog.Logger
	Watermark  string      // drawn on each sticker when non-empty
	Background color.Color // tray background, defaults to white
	OutDir     string      // archive destination directory
}

// Exporter runs export jobs. Safe to reuse across jobs; each job's prepared
// assets are local to the call.
type Exporter struct {
	fetcher *assets.Fetcher
	opts    Options
	log     zerolog.Logger
}

// New creates an Exporter
func New(fetcher *assets.Fetcher, opts Options) *Exporter {
	return &Exporter{fetcher: fetcher, opts: opts, log: opts.Logger}
}

// Send prepares the pack and hands it to the native bridge
func (e *Exporter) Send(ctx context.Context, in pack.ExportInput) (Result, error) {
	e.emit(Event{Stage: StageChecking, Current: 0, Total: 1, Message: "Checking WhatsApp..."})

	if e.opts.Bridge == nil {
		return e.fail(StageChecking, CodeBridgeError, fmt.Errorf("no transfer bridge configured"))
	}
	installed, err := e.opts.Bridge.IsInstalled(ctx)
	if err != nil {
		return e.fail(StageChecking, CodeBridgeError, fmt.Errorf("bridge check failed: %w", err))
	}
	if !installed {
		return e.fail(StageChecking, CodeNotInstalled, ErrNotInstalled)
	}
	if err := pack.Validate(in.Stickers); err != nil {
		return e.fail(StageChecking, validationCode(err), err)
	}

	payload, res, err := e.preparePayload(ctx, in)
	if err != nil {
		return res, err
	}

	e.emit(Event{Stage: StageAdding, Current: 0, Total: 1, Message: "Adding to WhatsApp..."})
	bres, err := e.opts.Bridge.SendPack(ctx, payload)
	if err != nil {
		return e.fail(StageAdding, CodeBridgeError, fmt.Errorf("bridge call failed: %w", err))
	}
	if !bres.Success {
		code := bres.ErrorCode
		if code == "" {
			code = CodeBridgeError
		}
		return e.fail(StageAdding, code, fmt.Errorf("transfer rejected: %s", bres.Message))
	}

	e.emit(Event{Stage: StageComplete, Current: 1, Total: 1, Message: "Pack added to WhatsApp"})
	e.log.Info().Str("pack", in.Identifier).Int("stickers", len(payload.Stickers)).Msg("pack transferred")
	return Result{Stage: StageComplete, Message: bres.Message}, nil
}

// Archive prepares the pack and writes it as a .wasticker zip archive
func (e *Exporter) Archive(ctx context.Context, in pack.ExportInput) (Result, error) {
	e.emit(Event{Stage: StageChecking, Current: 0, Total: 1, Message: "Validating pack..."})
	if err := pack.Validate(in.Stickers); err != nil {
		return e.fail(StageChecking, validationCode(err), err)
	}

	payload, res, err := e.preparePayload(ctx, in)
	if err != nil {
		return res, err
	}

	e.emit(Event{Stage: StageArchiving, Current: 0, Total: 1, Message: "Building archive..."})
	path, err := e.writeArchive(payload, in.Name)
	if err != nil {
		return e.fail(StageArchiving, CodeArchiveFailed, err)
	}

	e.emit(Event{Stage: StageComplete, Current: 1, Total: 1, Message: "Archive saved"})
	e.log.Info().Str("pack", in.Identifier).Str("path", path).Msg("pack archived")
	return Result{Stage: StageComplete, Message: "Archive saved", ArchivePath: path}, nil
}

// validationCode maps a validation error to its result code. Validation
// re-runs here even though the UI gate uses the same predicate; the export
// must not rely on its caller having checked.
func validationCode(err error) string {
	switch {
	case errors.Is(err, pack.ErrTooFewStickers):
		return CodeTooFew
	case errors.Is(err, pack.ErrTooManyStickers):
		return CodeTooMany
	default:
		return CodeInvalid
	}
}

// preparePayload runs the tray and sticker stages and assembles the payload
func (e *Exporter) preparePayload(ctx context.Context, in pack.ExportInput) (Payload, Result, error) {
	trayData, res, err := e.prepareTray(ctx, in)
	if err != nil {
		return Payload{}, res, err
	}

	prepared, res, err := e.prepareStickers(ctx, in)
	if err != nil {
		return Payload{}, res, err
	}

	// Preparing is pure assembly; the stage exists so the caller's progress
	// stream covers the whole pipeline.
	e.emit(Event{Stage: StagePreparing, Current: 0, Total: 1, Message: "Preparing pack..."})
	payload := Payload{
		Identifier:              in.Identifier,
		Name:                    in.Name,
		Publisher:               in.Publisher,
		TrayImage:               trayData,
		Stickers:                prepared,
		PublisherEmail:          in.PublisherEmail,
		PublisherWebsite:        in.PublisherWebsite,
		PrivacyPolicyWebsite:    in.PrivacyPolicyURL,
		LicenseAgreementWebsite: in.LicenseURL,
	}
	e.emit(Event{Stage: StagePreparing, Current: 1, Total: 1, Message: "Pack prepared"})

	return payload, Result{}, nil
}

// prepareTray downloads the tray source and composes the tray icon
func (e *Exporter) prepareTray(ctx context.Context, in pack.ExportInput) ([]byte, Result, error) {
	e.emit(Event{Stage: StageDownloadingTray, Current: 0, Total: 1, Message: "Downloading tray icon..."})

	if err := ctx.Err(); err != nil {
		res, err := e.cancel(err)
		return nil, res, err
	}

	data, err := e.fetcher.Acquire(ctx, in.Identifier+"_tray", in.TrayImageURL)
	if err != nil {
		res, err := e.failFetch(StageDownloadingTray, err)
		return nil, res, err
	}

	img, err := raster.Decode(data)
	if err != nil {
		res, err := e.fail(StageDownloadingTray, CodeEncodeFailed, err)
		return nil, res, err
	}

	bg := e.opts.Background
	result, err := tray.Generate([]image.Image{img}, tray.Options{Background: bg})
	if err != nil {
		res, err := e.fail(StageDownloadingTray, CodeEncodeFailed, err)
		return nil, res, err
	}
	if result.Oversize(codec.TrayProfile) {
		e.log.Warn().Int("bytes", len(result.Data)).Msg("tray icon over 50KB budget")
	}

	e.emit(Event{Stage: StageDownloadingTray, Current: 1, Total: 1, Message: "Tray icon ready"})
	return result.Data, Result{}, nil
}

// prepareStickers sequentially downloads and prepares every sticker.
// Sequential on purpose: one decoded raster in memory at a time, and
// strictly monotonic progress.
func (e *Exporter) prepareStickers(ctx context.Context, in pack.ExportInput) ([]PreparedSticker, Result, error) {
	total := len(in.Stickers)
	e.emit(Event{Stage: StageDownloadingStickers, Current: 0, Total: total, Message: "Downloading stickers..."})

	prepared := make([]PreparedSticker, 0, total)
	for i, s := range in.Stickers {
		if err := ctx.Err(); err != nil {
			res, err := e.cancel(err)
			return nil, res, err
		}

		data, err := e.prepareOne(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				res, cerr := e.cancel(ctx.Err())
				return nil, res, cerr
			}
			var res Result
			if errors.Is(err, assets.ErrFetch) {
				res, err = e.failFetch(StageDownloadingStickers, err)
			} else {
				res, err = e.fail(StageDownloadingStickers, CodeEncodeFailed, err)
			}
			return nil, res, err
		}

		prepared = append(prepared, PreparedSticker{Data: data, Emojis: s.Emojis})
		e.emit(Event{
			Stage:   StageDownloadingStickers,
			Current: i + 1,
			Total:   total,
			Message: fmt.Sprintf("Sticker %d/%d ready", i+1, total),
		})
	}

	return prepared, Result{}, nil
}

// prepareOne converts a single sticker to the 512x512 WebP contract
func (e *Exporter) prepareOne(ctx context.Context, s pack.Sticker) ([]byte, error) {
	data, err := e.fetcher.Acquire(ctx, s.ID, s.ImageURL)
	if err != nil {
		return nil, err
	}

	// Animated WebP cannot be re-encoded here; pass it through untouched
	if raster.IsAnimatedWebP(data) {
		if len(data) > raster.MaxAnimatedBytes {
			e.log.Warn().Str("id", s.ID).Int("bytes", len(data)).Msg("animated sticker over size budget, passing through")
		}
		return data, nil
	}

	img, err := raster.Decode(data)
	if err != nil {
		return nil, err
	}

	canvas := raster.FitCanvas(img, codec.StickerProfile.Size, 1.0, color.Transparent)
	if e.opts.Watermark != "" {
		canvas = raster.Watermark(canvas, e.opts.Watermark)
	}

	result, err := codec.Compress(canvas, codec.StickerProfile)
	if err != nil {
		return nil, err
	}
	if result.Oversize(codec.StickerProfile) {
		e.log.Warn().Str("id", s.ID).Int("bytes", len(result.Data)).Msg("sticker over 100KB budget")
	}

	return result.Data, nil
}

// fail emits the Failed event and builds the terminal result
func (e *Exporter) fail(stage Stage, code string, err error) (Result, error) {
	e.log.Error().Err(err).Str("stage", string(stage)).Str("code", code).Msg("export failed")
	e.emit(Event{Stage: StageFailed, Message: err.Error()})
	return Result{Stage: StageFailed, Message: err.Error(), ErrorCode: code}, err
}

// failFetch maps download errors, preserving the fetch error code
func (e *Exporter) failFetch(stage Stage, err error) (Result, error) {
	return e.fail(stage, CodeFetchFailed, err)
}

// cancel emits the Cancelled event and builds the terminal result
func (e *Exporter) cancel(err error) (Result, error) {
	e.log.Info().Msg("export cancelled")
	e.emit(Event{Stage: StageCancelled, Message: "Export cancelled"})
	return Result{Stage: StageCancelled, Message: "Export cancelled", ErrorCode: CodeCancelled}, err
}

// emit delivers a progress event to the registered callback
func (e *Exporter) emit(ev Event) {
	if e.opts.Progress != nil {
		e.opts.Progress(ev)
	}
}
