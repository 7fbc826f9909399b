package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/vaultpass/passgen-go/internal/app"
	"github.com/vaultpass/passgen-go/internal/config"
	"github.com/vaultpass/passgen-go/internal/model"
)

func main() {
	cli := kingpin.New("passgen", "Random password generator")
	cli.HelpFlag.Short('h')
	cli.UsageTemplate(kingpin.CompactUsageTemplate)
	verbose := cli.Flag("verbose", "log diagnostics to stderr").Short('v').Bool()

	gen := cli.Command("generate", "sample passwords from the selected character classes").Default()
	genLength := gen.Flag("length", "password length (4-16)").Short('l').Default("8").String()
	genUpper := gen.Flag("upper", "include uppercase letters").Short('u').Bool()
	genLower := gen.Flag("lower", "include lowercase letters").Short('L').Default("true").Bool()
	genDigits := gen.Flag("digits", "include numbers").Short('d').Bool()
	genSymbols := gen.Flag("symbols", "include symbols").Short('s').Bool()
	genCount := gen.Flag("count", "number of passwords").Short('c').Default("1").Int()
	genClip := gen.Flag("clip", "copy the last password into the clipboard").Bool()

	ai := cli.Command("ai", "ask the remote model for a password")
	aiLength := ai.Flag("length", "password length (4-16)").Short('l').Default("8").String()
	aiClip := ai.Flag("clip", "copy the password into the clipboard").Bool()

	interactive := cli.Command("interactive", "edit a password form from the terminal")
	interactiveModel := interactive.Flag("model", "use the remote model generator").Short('m').Bool()

	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	// The interactive form handles Ctrl-C itself.
	sigs := []os.Signal{os.Interrupt, syscall.SIGTERM}
	var interrupts chan os.Signal
	if command == interactive.FullCommand() {
		sigs = []os.Signal{syscall.SIGTERM}
		interrupts = make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)
	}
	ctx, stop := signal.NotifyContext(context.Background(), sigs...)
	defer stop()

	gens, err := app.NewGenerators(ctx, config.Load())
	if err != nil {
		fatal(err)
	}
	defer gens.Close()

	out := newPrinter(os.Stdout)

	switch command {
	case gen.FullCommand():
		sel := selectionFromFlags(*genUpper, *genLower, *genDigits, *genSymbols)
		err = runGenerate(ctx, gens.Local, sel, *genLength, *genCount, *genClip, out)
	case ai.FullCommand():
		g, gerr := gens.ByMode(model.ModeModel)
		if gerr != nil {
			fatal(gerr)
		}
		err = runGenerate(ctx, g, defaultSelection(), *aiLength, 1, *aiClip, out)
	case interactive.FullCommand():
		mode := model.ModeLocal
		if *interactiveModel {
			mode = model.ModeModel
		}
		g, gerr := gens.ByMode(mode)
		if gerr != nil {
			fatal(gerr)
		}
		err = runInteractive(ctx, g, os.Stdin, out, interrupts)
	}

	if err != nil {
		gens.Close()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, red("error: %v", err))
	os.Exit(1)
}
