// Command teletype runs an Altair 8800 program image with the machine's
// 88-SIO serial console on the terminal.
//
// Press Escape for the menu, from which a text file can be typed in at
// teletype speed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	tty "github.com/nicolasbauw/teletype/term"
)

func main() {
	log.SetPrefix("teletype: ")
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	Image  string `arg:"" type:"path" help:"Program image to load."`
	Config string `short:"c" type:"path" placeholder:"FILE" help:"Read settings from a YAML file."`
	Base   string `placeholder:"ADDR" help:"Load the image at this address (default from config, 0)."`
	Plain  bool   `help:"Use standard input and output as they are, without the full-screen terminal."`
	Watch  bool   `help:"Restart the program when the image file changes."`
	Log    string `type:"path" placeholder:"FILE" help:"Append log messages to a file."`
}

// exitCode carries kong's exit status out of the parser.
type exitCode int

// run is the command with its arguments and output streams, returning
// the exit status.
func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var c cli
	parser, err := kong.New(&c,
		kong.Name("teletype"),
		kong.Description("Run an Altair 8800 program with its serial console on this terminal."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitCode(code)) }),
		kong.UsageOnError(),
	)
	if err != nil {
		panic(err)
	}
	_, err = parser.Parse(args)
	parser.FatalIfErrorf(err)

	if err := c.run(stderr); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func (c *cli) run(stderr io.Writer) error {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Base != "" {
		base, err := strconv.ParseUint(c.Base, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid base address %q", c.Base)
		}
		cfg.Base = uint16(base)
	}
	image, err := os.ReadFile(c.Image)
	if err != nil {
		return err
	}

	// The terminal belongs to the program from here on, so log messages
	// are held back until it has been restored.
	var logs backlog
	if c.Log != "" {
		f, err := os.OpenFile(c.Log, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(&logs)
	}
	defer func() {
		log.SetOutput(stderr)
		logs.Emit(stderr)
	}()

	t, err := openTerminal(c.Plain)
	if err != nil {
		return err
	}
	defer t.Close()

	sys, err := newSystem(cfg, image, t)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Watch {
		reload := make(chan []byte)
		if err := watchImage(ctx, c.Image, reload); err != nil {
			return fmt.Errorf("watching %s: %w", c.Image, err)
		}
		sys.dispatcher.Reload = reload
	}

	log.Printf("running %s (%d bytes at %.4x)", c.Image, len(image), cfg.Base)
	err = sys.run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Print("interrupted")
		return nil
	}
	if err == nil {
		log.Printf("halted at %.4x", sys.machine.PC())
	}
	return err
}

// openTerminal returns the full-screen terminal when standard input and
// output are both terminals, and a stream terminal otherwise.
func openTerminal(plain bool) (terminal, error) {
	if !plain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		s, err := tty.OpenScreen()
		if err != nil {
			return nil, fmt.Errorf("opening screen: %w", err)
		}
		return s, nil
	}
	s, err := tty.OpenStream(os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	return s, nil
}
