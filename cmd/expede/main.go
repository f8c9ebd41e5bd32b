// Expede — an order expedition panel for food service counters.
//
// Usage:
//
//	expede [-verbose] [-quiet] [-demo N]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lfmorais/expede/internal/board"
	"github.com/lfmorais/expede/internal/cnpj"
	"github.com/lfmorais/expede/internal/command"
	"github.com/lfmorais/expede/internal/config"
	"github.com/lfmorais/expede/internal/display"
	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
	"github.com/lfmorais/expede/internal/sim"
	"github.com/lfmorais/expede/internal/speech"
	"github.com/lfmorais/expede/internal/sweeper"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".expede-logs/expede.log", "file to write logs to (use \"stderr\" to log to console)")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if speech keys are set")
	configPath := flag.String("config", ".expede/config.json", "path to the panel configuration file")
	demo := flag.Int("demo", 0, "seed N synthetic production orders at startup")
	exportPath := flag.String("export-config", "", "write the effective configuration to this path and exit")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the panel stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so
	// third-party libraries don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	cfg := config.Load(*configPath, log)

	if *exportPath != "" {
		data, err := config.Export(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: exporting configuration: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*exportPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", *exportPath, err)
			os.Exit(1)
		}
		fmt.Printf("configuration written to %s\n", *exportPath)
		return
	}

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the speech stack first so the board can announce ready
	// orders. TTS needs credentials and a working audio device; either
	// one missing degrades to the silent synthesizer.
	var synth domain.Synthesizer = speech.NewNoOp(log)
	var player domain.SoundPlayer

	speechKey := os.Getenv(speech.EnvSpeechKey)
	speechRegion := os.Getenv(speech.EnvSpeechRegion)

	if p, err := speech.NewPlayer(log); err != nil {
		log.Error("audio player init failed, sounds disabled: %v", err)
	} else {
		player = p
	}

	if speechKey != "" && speechRegion != "" && !*noSpeech && player != nil {
		httpSynth := speech.NewHTTPSynthesizer(speechKey, speechRegion, player, log)
		httpSynth.Start(ctx)
		synth = httpSynth
		log.Info("TTS enabled (region=%s)", speechRegion)
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvSpeechKey, speech.EnvSpeechRegion)
	}

	announcer := speech.NewAnnouncer(synth, player, announcementConfig(cfg), log)
	announcer.Start(ctx)

	// Orders that become ready get announced.
	orders := board.New(log, board.WithOnReady(func(o domain.Order) {
		announcer.Announce(o)
	}))
	ui := display.NewUI(orders, cfg)
	parser := command.NewParser(log)
	gen := sim.NewGenerator(log)

	// Background auto-expedition sweep.
	var sweep *sweeper.Sweeper
	if cfg.AutoExpedite.Enabled {
		sweep = sweeper.New(orders, ui, log,
			sweeper.WithThreshold(time.Duration(cfg.AutoExpedite.Minutes)*time.Minute),
		)
		sweep.Start(ctx)
		defer sweep.Stop()
	}

	// Seed demo data before the UI takes the terminal.
	if *demo > 0 {
		orders.Inject(gen.Generate(*demo)...)
		log.Info("seeded %d demo orders", *demo)
	}

	app := &cliApp{
		board:  orders,
		parser: parser,
		gen:    gen,
		ui:     ui,
		log:    log,
	}

	fmt.Println(display.RenderBanner())
	printCompanyHeader(ctx, log)
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, '000' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

// announcementConfig maps the persisted panel configuration onto the
// announcer's policy struct.
func announcementConfig(cfg config.PanelConfig) speech.Config {
	return speech.Config{
		Enabled:        cfg.Speech.Enabled,
		Template:       speech.TemplateKind(cfg.Speech.Template),
		CustomTemplate: cfg.Speech.CustomTemplate,
		VoiceName:      cfg.Speech.VoiceName,
		Locale:         cfg.Speech.Locale,
		Rate:           cfg.Speech.Rate,
		Pitch:          cfg.Speech.Pitch,
		Volume:         cfg.Speech.Volume,
		RepeatCount:    cfg.Speech.RepeatCount,
		RepeatInterval: time.Duration(cfg.Speech.RepeatSeconds) * time.Second,
		Sound:          speech.SoundKind(cfg.Sound.Kind),
		SoundFilePath:  cfg.Sound.File,
	}
}

// printCompanyHeader resolves the establishment name from the tax id
// in EXPEDE_CNPJ, when set. Lookup failures only log.
func printCompanyHeader(ctx context.Context, log *logger.Logger) {
	id := os.Getenv("EXPEDE_CNPJ")
	if id == "" {
		return
	}
	if !cnpj.Valid(id) {
		log.Warn("EXPEDE_CNPJ is not a valid CNPJ: %q", id)
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	info, err := cnpj.NewClient(log).Lookup(lookupCtx, id)
	if err != nil {
		log.Warn("company lookup failed: %v", err)
		return
	}

	name := info.TradeName
	if name == "" {
		name = info.LegalName
	}
	fmt.Println(display.BannerStyle.Render("  " + name))
}

type cliApp struct {
	board  *board.Board
	parser domain.CommandParser
	gen    *sim.Generator
	ui     *display.UI
	log    *logger.Logger

	// pendingExit is set after the exit sentinel; the next input either
	// confirms or cancels.
	pendingExit bool
}

func (a *cliApp) run(ctx context.Context) {
	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if a.pendingExit {
			if a.confirmExit(input) {
				return
			}
			continue
		}

		cmd, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)
		if a.handleCommand(ctx, cmd) {
			return
		}
	}
}

// handleCommand dispatches one parsed command. Returns true when the
// app should exit.
func (a *cliApp) handleCommand(ctx context.Context, cmd *domain.Command) bool {
	switch cmd.Type {
	case domain.CommandExpedite:
		a.expedite(cmd.Payload)
	case domain.CommandRecall:
		a.recall(cmd.Payload)
	case domain.CommandAdvance:
		a.advance(cmd.Payload)
	case domain.CommandGenerate:
		a.generate(cmd.Payload)
	case domain.CommandClear:
		a.clear()
	case domain.CommandHelp:
		a.showHelp()
	case domain.CommandExit:
		a.pendingExit = true
		a.ui.PrintHint("Exit? Type 'y' to confirm, anything else to cancel.")
	case domain.CommandInvalid:
		a.ui.PrintHint(fmt.Sprintf("Didn't understand %q. Type 'help' for commands.", cmd.Payload))
	}
	return false
}

func (a *cliApp) confirmExit(input string) bool {
	a.pendingExit = false
	switch strings.ToLower(input) {
	case "y", "yes", "s", "sim":
		a.ui.PrintInfo("Closing the panel.")
		return true
	}
	a.ui.PrintHint("Exit cancelled.")
	return false
}

func (a *cliApp) expedite(number string) {
	rec, err := a.board.Expedite(number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.ui.PrintHint(fmt.Sprintf("No ready order matches %q.", number))
		} else {
			a.log.Error("expediting %q: %v", number, err)
			a.ui.PrintUrgent(fmt.Sprintf("Could not expedite %s: %v", number, err))
		}
		return
	}
	a.ui.PrintInfo(fmt.Sprintf("Order %s expedited.", rec.Number))
}

func (a *cliApp) recall(number string) {
	if err := a.board.Recall(number); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.ui.PrintHint(fmt.Sprintf("No ready order matches %q.", number))
		} else {
			a.log.Error("recalling %q: %v", number, err)
			a.ui.PrintUrgent(fmt.Sprintf("Could not recall %s: %v", number, err))
		}
		return
	}
	a.ui.PrintInfo(fmt.Sprintf("Order %s sent back to production.", number))
}

func (a *cliApp) advance(number string) {
	target, ok := a.findProduction(number)
	if !ok {
		a.ui.PrintHint(fmt.Sprintf("No production order matches %q.", number))
		return
	}
	a.board.Advance(target.ID)
	a.ui.PrintInfo(fmt.Sprintf("Order %s is ready.", target.Number))
}

// findProduction matches a typed number against the production column,
// tolerating aggregator prefixes the same way expedition does.
func (a *cliApp) findProduction(number string) (domain.Order, bool) {
	input := digits(number)
	for _, o := range a.board.Production() {
		if o.Number == number {
			return o, true
		}
		if input != "" && digits(o.Number) == input {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (a *cliApp) generate(payload string) {
	n := 0
	fmt.Sscanf(payload, "%d", &n)
	if n <= 0 || n > 100 {
		a.ui.PrintHint("Usage: gen N (1-100).")
		return
	}
	a.board.Inject(a.gen.Generate(n)...)
	a.ui.PrintInfo(fmt.Sprintf("%d synthetic orders added.", n))
}

func (a *cliApp) clear() {
	n := a.board.Len()
	a.board.ClearAll()
	a.ui.PrintInfo(fmt.Sprintf("Board cleared (%d orders removed).", n))
}

func (a *cliApp) showHelp() {
	a.ui.PrintInfo("Commands:")
	a.ui.PrintHint("  <number>      expedite a ready order (e.g. 123, IF-450)")
	a.ui.PrintHint("  +<number>     mark a production order as ready (also: ready <number>)")
	a.ui.PrintHint("  -<number>     recall a ready order to production")
	a.ui.PrintHint("  gen N         add N synthetic orders")
	a.ui.PrintHint("  clear         remove every order from the board")
	a.ui.PrintHint("  help          show this message")
	a.ui.PrintHint("  000           exit (asks for confirmation)")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
