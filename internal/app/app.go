// Package app orchestrates the audio engine: the record path
// (catalog → capture → gain → sink) and the trim path (loader → playback →
// sink). It owns no UI; any front end drives it through these methods and
// observes it through the notifier.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/waverec/internal/audio"
	"github.com/petems/waverec/internal/config"
	"github.com/petems/waverec/internal/gain"
	"github.com/petems/waverec/internal/loader"
	"github.com/petems/waverec/internal/sink"
)

// trimSuffix is appended to the source stem of trimmed exports.
const trimSuffix = "_trimmed"

// maxListedRecordings caps the recording list shown to front ends.
const maxListedRecordings = 40

type Config struct {
	Catalog  audio.Catalog
	Recorder audio.Recorder
	Player   audio.Player
	Notifier *audio.Notifier
	Config   *config.Config
	Logger   zerolog.Logger
}

type Engine struct {
	catalog  audio.Catalog
	rec      audio.Recorder
	player   audio.Player
	notifier *audio.Notifier
	cfg      *config.Config
	log      zerolog.Logger

	mu          sync.Mutex
	recording   bool
	recordStart time.Time
	pending     *audio.Buffer // processed take awaiting a successful write
	lastSaved   string

	loaded     audio.Buffer
	loadedPath string
	preview    []float32
	sel        audio.Selection
}

func New(cfg Config) *Engine {
	return &Engine{
		catalog:  cfg.Catalog,
		rec:      cfg.Recorder,
		player:   cfg.Player,
		notifier: cfg.Notifier,
		cfg:      cfg.Config,
		log:      cfg.Logger,
		sel:      audio.FullSelection,
	}
}

// Devices enumerates capture endpoints, loopback devices first.
func (e *Engine) Devices() ([]audio.Device, error) {
	devices, err := e.catalog.List()
	if err != nil {
		e.log.Error().Err(err).Msg("Device enumeration failed")
		return nil, err
	}
	return devices, nil
}

// StartRecording resolves the configured device (falling back to the
// default loopback device) and opens a capture stream. Elapsed time is
// measured from the wall clock sampled here.
func (e *Engine) StartRecording() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recording {
		return fmt.Errorf("already recording")
	}

	devices, err := e.catalog.List()
	if err != nil {
		return err
	}
	dev, ok := audio.FindByName(devices, e.cfg.Audio.DeviceName)
	if !ok {
		dev, ok = audio.DefaultDevice(devices)
	}
	if !ok {
		return fmt.Errorf("no capture device available")
	}

	if err := e.rec.Start(audio.ConfigForDevice(dev)); err != nil {
		return err
	}
	e.recording = true
	e.recordStart = time.Now()
	e.log.Info().Str("device", dev.Name).Msg("Recording started")
	return nil
}

// StopRecording closes the capture stream, applies the configured gain
// transform over the whole take and persists it. An empty take is
// discarded without error. On a write failure the processed take is kept
// so SaveTake can retry.
func (e *Engine) StopRecording() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.recording {
		return "", nil
	}
	e.recording = false

	buf, err := e.rec.Stop()
	if err != nil {
		return "", err
	}
	if buf.Empty() {
		e.log.Info().Msg("Nothing captured, skipping save")
		return "", nil
	}

	opts := gain.ManualGain(e.cfg.Gain.ManualFactor)
	if e.cfg.Gain.Normalize {
		opts = gain.NormalizeTo(e.cfg.Gain.TargetDBFS)
	}
	processed := gain.Apply(buf, opts)
	e.pending = &processed

	return e.saveLocked()
}

// SaveTake retries persisting the last recorded take after a failed write.
func (e *Engine) SaveTake() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending == nil {
		return "", fmt.Errorf("no unsaved take")
	}
	return e.saveLocked()
}

func (e *Engine) saveLocked() (string, error) {
	name := e.cfg.Template().BaseName(time.Now())
	path, err := sink.Write(*e.pending, e.cfg.Output.SaveDir, name)
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to save recording, take retained")
		return "", err
	}
	e.pending = nil
	e.lastSaved = path
	if e.notifier != nil {
		e.notifier.Emit(audio.Event{Kind: audio.EventRecordingSaved, Path: path})
	}
	e.log.Info().Str("path", path).Msg("Recording saved")
	return path, nil
}

// Recording reports whether a capture stream is open.
func (e *Engine) Recording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recording
}

// Elapsed returns the wall-clock time since recording started, zero when
// not recording.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.recording {
		return 0
	}
	return time.Since(e.recordStart)
}

// LastSaved returns the path of the most recently persisted recording.
func (e *Engine) LastSaved() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved
}

// Recordings lists saved recordings in the save directory, newest first.
func (e *Engine) Recordings() ([]string, error) {
	entries, err := os.ReadDir(e.cfg.Output.SaveDir)
	if err != nil {
		return nil, err
	}

	type rec struct {
		path string
		mod  time.Time
	}
	var recs []rec
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), sink.Extension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		recs = append(recs, rec{
			path: filepath.Join(e.cfg.Output.SaveDir, entry.Name()),
			mod:  info.ModTime(),
		})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].mod.After(recs[j].mod) })
	if len(recs) > maxListedRecordings {
		recs = recs[:maxListedRecordings]
	}

	paths := make([]string, len(recs))
	for i, r := range recs {
		paths[i] = r.path
	}
	return paths, nil
}

// LoadFile decodes an audio file for trimming and builds its preview.
// On failure nothing already loaded is disturbed.
func (e *Engine) LoadFile(path string) error {
	e.player.Stop()

	buf, err := loader.Load(path)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("Load failed")
		return err
	}

	e.mu.Lock()
	e.loaded = buf
	e.loadedPath = path
	e.preview = loader.Preview(buf, loader.DefaultPreviewPoints)
	e.sel = audio.FullSelection
	e.mu.Unlock()

	e.log.Info().
		Str("path", path).
		Int("frames", buf.Frames()).
		Float64("seconds", buf.Seconds()).
		Msg("File loaded")
	return nil
}

// Loaded reports whether a file is loaded for trimming.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.loaded.Empty()
}

// Duration returns the loaded file's length in seconds.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded.Seconds()
}

// Preview returns the decimated mono preview of the loaded file.
func (e *Engine) Preview() []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preview
}

// SetSelection moves the trim region. Playback is stopped first so the
// selection and an in-flight playback buffer are never live against
// different ranges.
func (e *Engine) SetSelection(start, end float64) error {
	sel := audio.Selection{Start: start, End: end}
	if err := sel.Validate(); err != nil {
		return err
	}

	if _, playing := e.player.Position(); playing {
		if err := e.player.Stop(); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.sel = sel
	e.mu.Unlock()
	return nil
}

// Selection returns the current trim region.
func (e *Engine) Selection() audio.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// PlaySelection streams the selected region, optionally looping.
func (e *Engine) PlaySelection(loop bool) error {
	e.mu.Lock()
	buf, sel := e.loaded, e.sel
	e.mu.Unlock()

	if buf.Empty() {
		return fmt.Errorf("no file loaded")
	}
	return e.player.Play(buf, sel, loop)
}

// StopPlayback cancels any in-flight playback.
func (e *Engine) StopPlayback() error {
	return e.player.Stop()
}

// PlaybackPosition reports the playback ratio; ok is false when idle.
func (e *Engine) PlaybackPosition() (float64, bool) {
	return e.player.Position()
}

// Trim writes the selected region of the loaded file next to the source as
// "<stem>_trimmed[_N].wav".
func (e *Engine) Trim() (string, error) {
	e.mu.Lock()
	buf, sel, srcPath := e.loaded, e.sel, e.loadedPath
	e.mu.Unlock()

	if buf.Empty() {
		return "", fmt.Errorf("no file loaded")
	}

	region := buf.Region(sel)
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	path, err := sink.Write(region, filepath.Dir(srcPath), stem+trimSuffix)
	if err != nil {
		e.log.Error().Err(err).Msg("Trim export failed")
		return "", err
	}
	e.log.Info().Str("path", path).Msg("Trim exported")
	return path, nil
}

// Shutdown stops any open streams and releases audio resources.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	recording := e.recording
	e.recording = false
	e.mu.Unlock()

	if recording {
		if _, err := e.rec.Stop(); err != nil {
			e.log.Error().Err(err).Msg("Capture stop failed during shutdown")
		}
	}
	e.player.Close()
	return e.rec.Close()
}
