package main

// The simulator runs the blade engine in a terminal.  The strip is drawn as a
// row of colored blocks and the keyboard stands in for the button and the
// accelerometer.  Without a gfx directory a small synthetic pack is generated
// in memory so every effect can be tried without assets

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/karlmutch/errors"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber"
	"github.com/TeamNorCal/saber/model"
)

var (
	gfxDir    = flag.String("gfx", "", "The directory holding effect packs, a synthetic demo pack is used when empty")
	mfxDir    = flag.String("mfx", "", "The directory holding the overlay animations, synthetic overlays are used when empty")
	soundsDir = flag.String("sounds", "", "The directory holding the event sounds")
	audio     = flag.Bool("audio", false, "Play sounds through the default audio device")
	pixels    = flag.Int("pixels", 80, "The number of pixels on the blade")
	logFile   = flag.String("log", "", "A file to write the log to, logging is discarded when empty")

	// create Logger interface
	logW logxi.Logger = logxi.NullLog
)

const help = "[1/2/3] press  [l] long  [h] hold  [t] tap  [s] swing  [↑/↓] tilt  [z] jiggle  [b] battery  [q] quit"

type status struct {
	mode    string
	pack    string
	tilt    float64
	held    bool
	volts   float64
	lastErr string
	sync.Mutex
}

func main() {

	flag.Parse()

	if len(*logFile) != 0 {
		file, errGo := os.Create(*logFile)
		if errGo != nil {
			fmt.Fprintln(os.Stderr, errGo.Error())
			os.Exit(-1)
		}
		defer file.Close()
		logW = logxi.NewLogger(logxi.NewConcurrentWriter(file), "saber-simulator")
		logW.SetLevel(logxi.LevelDebug)
	}

	screen, errGo := tcell.NewScreen()
	if errGo != nil {
		fmt.Fprintln(os.Stderr, errGo.Error())
		os.Exit(-1)
	}
	if errGo = screen.Init(); errGo != nil {
		fmt.Fprintln(os.Stderr, errGo.Error())
		os.Exit(-1)
	}
	defer screen.Fini()

	if err := simulate(screen); err != nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
}

func simulate(screen tcell.Screen) (err errors.Error) {
	cfg := saber.DefaultConfig()
	cfg.Pixels = *pixels
	settings := saber.DefaultSettings()
	settings.Apply(&cfg)

	input := saber.NewManualInput()
	collab := saber.Collaborators{
		Sensor:  input,
		Button:  input,
		Battery: input,
		Sink:    saber.NewTermSink(screen, 1, 3, 2, cfg.Pixels),
	}

	packs := saber.BuiltinPacks()
	if len(*gfxDir) != 0 {
		if packs, err = saber.DiscoverPacks(*gfxDir, logW); err != nil {
			return err
		}
		collab.Assets = saber.DirAssets{}
	} else {
		demo := demoAssets(cfg.Pixels)
		packs = append(packs, demoPack())
		collab.Assets = demo
		collab.Effects = demo
		cfg.Clash.Width = cfg.Pixels
	}
	if len(*mfxDir) != 0 {
		collab.Effects = saber.DirAssets{Root: *mfxDir}
	}

	if collab.Sounds, err = saber.DiscoverSounds(*soundsDir); err != nil {
		logW.Warn("sounds unavailable", "error", err.Error())
	}
	if *audio {
		mixer, err := saber.NewSpeakerMixer(44100, nil)
		if err != nil {
			logW.Warn("audio unavailable", "error", err.Error())
		} else {
			collab.Mixer = mixer
		}
	}

	engine := saber.NewEngine(cfg, settings, packs, collab, logW)
	engine.SelectPack(packs[len(packs)-1].Name)

	quitC := make(chan struct{})
	errorC := make(chan errors.Error, 4)

	st := &status{
		mode:  engine.Mode().String(),
		pack:  engine.Pack().Name,
		volts: input.Voltage(),
	}

	gw := &saber.Gateway{}
	subscribeC := gw.Start(engine, logW, errorC, quitC)
	go watch(screen, st, subscribeC, errorC, quitC)

	drawStatus(screen, st)
	keyboard(screen, engine, input, st)

	close(quitC)
	return nil
}

// keyboard maps key presses onto the manual input until the user quits
func keyboard(screen tcell.Screen, engine *saber.Engine, input *saber.ManualInput, st *status) {
	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
			drawStatus(screen, st)
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return
			}

			st.Lock()
			switch ev.Key() {
			case tcell.KeyUp:
				st.tilt = math.Max(-9.8, st.tilt-1.96)
			case tcell.KeyDown:
				st.tilt = math.Min(9.8, st.tilt+1.96)
			}
			switch ev.Rune() {
			case '1', '2', '3':
				input.Click(int(ev.Rune() - '0'))
			case 'l':
				input.Long()
			case 'h':
				st.held = !st.held
				input.SetHeld(st.held)
			case 't':
				input.Tap()
			case 's':
				input.SetAcceleration(20, st.tilt, 0)
				time.AfterFunc(100*time.Millisecond, func() {
					st.Lock()
					input.SetAcceleration(0, st.tilt, 0)
					st.Unlock()
				})
			case 'z':
				input.SetAcceleration(0, st.tilt, 6)
				time.AfterFunc(400*time.Millisecond, func() {
					st.Lock()
					input.SetAcceleration(0, st.tilt, 0)
					st.Unlock()
				})
			case 'b':
				st.volts -= 0.1
				if st.volts < 3.2 {
					st.volts = 4.1
				}
				input.SetVoltage(st.volts)
			}
			if ev.Key() == tcell.KeyUp || ev.Key() == tcell.KeyDown {
				input.SetAcceleration(0, st.tilt, 0)
			}
			st.Unlock()
			drawStatus(screen, st)
		}
	}
}

func watch(screen tcell.Screen, st *status, subscribeC chan chan model.ModeChange, errorC <-chan errors.Error, quitC <-chan struct{}) {
	changeC := make(chan model.ModeChange, 4)
	subscribeC <- changeC

	for {
		select {
		case change := <-changeC:
			st.Lock()
			st.mode = change.To
			st.pack = change.Pack
			st.Unlock()
		case err := <-errorC:
			st.Lock()
			st.lastErr = err.Error()
			st.Unlock()
		case <-quitC:
			return
		}
		drawStatus(screen, st)
	}
}

func drawText(screen tcell.Screen, x int, y int, style tcell.Style, text string) {
	width, _ := screen.Size()
	for _, r := range text {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
}

func drawStatus(screen tcell.Screen, st *status) {
	st.Lock()
	line := fmt.Sprintf("mode %-9s pack %-26s tilt %+5.1f held %-5t battery %.1fV", st.mode, st.pack, st.tilt, st.held, st.volts)
	lastErr := st.lastErr
	st.Unlock()

	bold := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	drawText(screen, 1, 0, bold, "saber simulator")
	drawText(screen, 1, 1, tcell.StyleDefault, line)
	drawText(screen, 1, 6, tcell.StyleDefault.Foreground(tcell.ColorGray), help)
	drawText(screen, 1, 7, tcell.StyleDefault.Foreground(tcell.ColorRed), lastErr)
	screen.Show()
}
