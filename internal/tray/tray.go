package tray

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/petems/waverec/internal/app"
	"github.com/petems/waverec/internal/config"
)

// UI is a minimal front end over the engine: record toggle, device
// selection, normalize toggle. The engine has no dependency on it.
type UI struct {
	engine *app.Engine
	cfg    *config.Config
	log    zerolog.Logger

	// Menu items
	mRecord    *systray.MenuItem
	mDevices   *systray.MenuItem
	mNormalize *systray.MenuItem
}

func New(engine *app.Engine, cfg *config.Config, log zerolog.Logger) *UI {
	return &UI{
		engine: engine,
		cfg:    cfg,
		log:    log,
	}
}

// Run starts the tray loop. MUST run on the main thread.
func (u *UI) Run() error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	u.updateStatus()
	systray.SetTooltip("System audio recorder")

	u.mRecord = systray.AddMenuItem("Record", "Start capturing audio")
	systray.AddSeparator()

	u.mDevices = systray.AddMenuItem("Capture Device", "Select capture device")
	u.buildDeviceMenu()

	u.mNormalize = systray.AddMenuItemCheckbox(
		"Normalize to -1 dBFS", "Peak-normalize recordings on save", u.cfg.Gain.Normalize)

	systray.AddSeparator()
	mFolder := systray.AddMenuItem("Open Save Folder", "Show recordings")
	mCopyPath := systray.AddMenuItem("Copy Last Recording Path", "Copy path to clipboard")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	go u.handleEvents(mFolder, mCopyPath, mQuit)
}

func (u *UI) handleEvents(mFolder, mCopyPath, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mRecord.ClickedCh:
			u.toggleRecord()
		case <-u.mNormalize.ClickedCh:
			u.toggleNormalize()
		case <-mFolder.ClickedCh:
			u.openSaveFolder()
		case <-mCopyPath.ClickedCh:
			u.copyLastPath()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) buildDeviceMenu() {
	devices, err := u.engine.Devices()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to list audio devices")
		u.mDevices.AddSubMenuItem("No devices found", "").Disable()
		return
	}

	deviceItems := make(map[string]*systray.MenuItem)

	for _, dev := range devices {
		marker := "🎙"
		if dev.IsLoopback {
			marker = "🔊"
		}
		item := u.mDevices.AddSubMenuItem(fmt.Sprintf("%s  %s", marker, dev.Name), "")
		if dev.Name == u.cfg.Audio.DeviceName {
			item.Check()
		}
		deviceItems[dev.Name] = item

		go func(name string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				for n, itm := range deviceItems {
					if n != name {
						itm.Uncheck()
					}
				}
				menuItem.Check()
				u.cfg.Audio.DeviceName = name
				u.cfg.Save()
				u.log.Info().Str("device", name).Msg("Changed capture device")
			}
		}(dev.Name, item)
	}
}

func (u *UI) toggleRecord() {
	if u.engine.Recording() {
		path, err := u.engine.StopRecording()
		if err != nil {
			u.log.Error().Err(err).Msg("Stop recording failed")
		} else if path != "" {
			u.log.Info().Str("path", path).Msg("Saved recording")
		}
		u.mRecord.SetTitle("Record")
	} else {
		if err := u.engine.StartRecording(); err != nil {
			u.log.Error().Err(err).Msg("Start recording failed")
			return
		}
		u.mRecord.SetTitle("Stop Recording")
	}
	u.updateStatus()
}

func (u *UI) toggleNormalize() {
	u.cfg.Gain.Normalize = !u.cfg.Gain.Normalize
	if u.cfg.Gain.Normalize {
		u.mNormalize.Check()
	} else {
		u.mNormalize.Uncheck()
	}
	u.cfg.Save()
}

func (u *UI) openSaveFolder() {
	dir := u.cfg.Output.SaveDir
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dir)
	case "windows":
		cmd = exec.Command("explorer", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	if err := cmd.Start(); err != nil {
		u.log.Error().Err(err).Str("dir", dir).Msg("Failed to open save folder")
	}
}

func (u *UI) copyLastPath() {
	path := u.engine.LastSaved()
	if path == "" {
		return
	}
	if err := clipboard.WriteAll(path); err != nil {
		u.log.Error().Err(err).Msg("Failed to copy path to clipboard")
	}
}

func (u *UI) onExit() {
	// Engine shutdown is handled by main.
}

// updateStatus sets the tray title with the wave emoji and a state marker
func (u *UI) updateStatus() {
	if u.engine.Recording() {
		systray.SetTitle("🌊 🔴")
	} else {
		systray.SetTitle("🌊 🟢")
	}
}
