package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber"
	"github.com/TeamNorCal/saber/model"
	"github.com/TeamNorCal/saber/version"

	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag
)

var (
	logger = logxi.New("saber")

	verbose = flag.Bool("v", false, "When enabled will print internal logging for this tool")

	gfxDir       = flag.String("gfx", "gfx", "The directory holding one sub directory per effect pack")
	mfxDir       = flag.String("mfx", "mfx", "The directory holding the clash, blast and lockup overlay animations")
	soundsDir    = flag.String("sounds", "sounds", "The directory holding the numbered event sounds and blst*.wav blaster sounds")
	settingsFile = flag.String("settings", "", "A JSON or YAML file holding the user settings, defaults are used when absent")
	packName     = flag.String("pack", "", "The effect pack selected at startup, the first pack when empty")
	pixels       = flag.Int("pixels", 80, "The number of pixels on the blade")

	opcServer = flag.String("opc", "", "The address of the fadecandy OPC server, for example localhost:7890")
	ddpAddr   = flag.String("ddp", "", "The address of a DDP (WLED) controller, for example 192.168.1.50:4048")

	audio      = flag.Bool("audio", true, "Play sounds through the default audio device")
	sampleRate = flag.Int("sample-rate", 44100, "The audio output sample rate")

	script = flag.String("script", "", "A file of timed input events replayed as the button and accelerometer")
	ignite = flag.Bool("ignite", false, "Ignite the blade immediately rather than waiting for a button press")

	mqttBroker = flag.String("mqtt", "", "An MQTT broker url mode changes are published to, for example tcp://localhost:1883")
	mqttPrefix = flag.String("mqtt-prefix", "saber", "The topic prefix used for published mode changes")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options]       effect packs → OPC/DDP (saber)      ", version.GitHash, "    ", version.BuildTime)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "saber plays blade effects, ignition, hum, clash, blast, lockup and retraction, onto LED strips")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

func main() {

	// Parse the CLI flags
	if !flag.Parsed() {
		envflag.Parse()
	}

	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	logger.Debug(fmt.Sprintf("%s built at %s, against commit id %s", os.Args[0], version.BuildTime, version.GitHash))

	quitC := make(chan struct{})
	errorC := make(chan errors.Error, 8)
	msgC := make(chan string, 8)

	go runTUI(msgC, errorC, quitC)

	if err := run(errorC, quitC); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
}

func run(errorC chan errors.Error, quitC chan struct{}) (err errors.Error) {

	settings, err := saber.LoadSettings(*settingsFile)
	if err != nil {
		logger.Warn("settings file unusable, defaults loaded", "error", err.Error())
	}

	cfg := saber.DefaultConfig()
	settings.Apply(&cfg)
	cfg.Pixels = *pixels

	packs, err := saber.DiscoverPacks(*gfxDir, logger)
	if err != nil {
		logger.Warn("no effect packs found, using the built in packs", "error", err.Error())
	}

	sounds, err := saber.DiscoverSounds(*soundsDir)
	if err != nil {
		logger.Warn("no sounds found, running silent", "error", err.Error())
	}

	collab := saber.Collaborators{
		Assets:  saber.DirAssets{},
		Effects: saber.DirAssets{Root: *mfxDir},
		Sounds:  sounds,
	}

	if *audio {
		mixer, err := saber.NewSpeakerMixer(*sampleRate, nil)
		if err != nil {
			logger.Warn("audio unavailable, running silent", "error", err.Error())
		} else {
			collab.Mixer = mixer
		}
	}

	sinks := saber.NewMultiSink()
	if len(*opcServer) != 0 {
		sink, err := saber.NewOPCSink(*opcServer, 0, cfg.Pixels)
		if err != nil {
			logger.Warn("fadecandy not reachable yet, will retry", "error", err.Error())
		}
		sinks.Add(sink)
	}
	if len(*ddpAddr) != 0 {
		sink, err := saber.NewDDPSink(*ddpAddr, cfg.Pixels)
		if err != nil {
			return err
		}
		defer sink.Close()
		sinks.Add(sink)
	}
	if sinks.Len() == 0 {
		logger.Warn("no LED output configured, use --opc or --ddp")
	}
	collab.Sink = sinks

	if len(*script) != 0 {
		file, errGo := os.Open(*script)
		if errGo != nil {
			return errors.Wrap(errGo).With("script", *script).With("stack", stack.Trace().TrimRuntime())
		}
		input, err := saber.ParseScript(file)
		file.Close()
		if err != nil {
			return err.With("script", *script)
		}
		input.TapThreshold = settings.ClashThreshold()
		collab.Sensor = input
		collab.Button = input
		collab.Battery = input
	}

	engine := saber.NewEngine(cfg, settings, packs, collab, logger)
	if len(*packName) != 0 && !engine.SelectPack(*packName) {
		logger.Warn("unknown pack, using the first", "pack", *packName)
	}
	logger.Info("ready", "pack", engine.Pack().Name, "packs", len(engine.Packs()), "sounds", sounds.Count(), "settings", settings.String())

	gw := &saber.Gateway{
		Prefix: *mqttPrefix,
	}
	if len(*mqttBroker) != 0 {
		pub, err := saber.NewMQTTPublisher(*mqttBroker, "saber-"+engine.Session(), logger)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err.Error())
		} else {
			gw.Telemetry = pub
		}
	}

	if *ignite {
		engine.Enter(model.Startup, saber.RealClock{}.Now())
	}

	subscribeC := gw.Start(engine, logger, errorC, quitC)
	go runMonitoring(subscribeC, quitC)

	stopC := make(chan os.Signal, 1)
	signal.Notify(stopC, os.Interrupt, syscall.SIGTERM)
	<-stopC

	logger.Info("stopping")
	close(quitC)
	return nil
}
