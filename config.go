package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"github.com/nicolasbauw/teletype/altair"
	"github.com/nicolasbauw/teletype/sio"
)

// config holds the settings that may be given in a YAML file. Anything not
// in the file keeps its default.
type config struct {
	Base        uint16         `yaml:"base"`
	SenseSwitch senseSwitch    `yaml:"senseSwitch"`
	ROM         []altair.Range `yaml:"rom"`
	Slice       int            `yaml:"slice"`
	HaltPC      uint16         `yaml:"haltPC"`
	Output      byte           `yaml:"outputDevice"`
	CharDelay   time.Duration  `yaml:"charDelay"`
	Keys        keyNames       `yaml:"keys"`
}

// senseSwitch is the front panel switch register, read by the program as
// an input port.
type senseSwitch struct {
	Port  byte `yaml:"port"`
	Value byte `yaml:"value"`
}

type keyNames struct {
	Menu      string `yaml:"menu"`
	Quit      string `yaml:"quit"`
	Load      string `yaml:"load"`
	Interrupt string `yaml:"interrupt"`
}

func defaultConfig() *config {
	return &config{
		SenseSwitch: senseSwitch{Port: 0xff, Value: 0x00},
		ROM:         []altair.Range{{Start: 0xffff, End: 0xffff}},
		Slice:       altair.DefaultSlice,
		HaltPC:      sio.DefaultHaltPC,
		Output:      sio.DataPort,
		CharDelay:   sio.DefaultCharDelay,
		Keys:        keyNames{Menu: "Esc", Quit: "Q", Load: "L", Interrupt: "C"},
	}
}

// loadConfig reads the named YAML file over the defaults. An empty name
// returns the defaults.
func loadConfig(name string) (*config, error) {
	c := defaultConfig()
	if name == "" {
		return c, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

func (c *config) validate() error {
	if c.Slice <= 0 {
		return fmt.Errorf("slice must be positive, not %d", c.Slice)
	}
	if c.CharDelay < 0 {
		return fmt.Errorf("negative charDelay %v", c.CharDelay)
	}
	for _, r := range c.ROM {
		if r.End < r.Start {
			return fmt.Errorf("rom range %.4x-%.4x ends before it starts", r.Start, r.End)
		}
	}
	_, err := c.Keys.keys()
	return err
}

// keys returns the menu keys. The menu key is named as tcell names keys
// ("Esc", "F1", "Ctrl-]"), ignoring case; the others are single characters.
func (k keyNames) keys() (sio.Keys, error) {
	var (
		keys sio.Keys
		err  error
	)
	if keys.Trigger, err = parseKey(k.Menu); err != nil {
		return keys, fmt.Errorf("keys.menu: %w", err)
	}
	for _, f := range []struct {
		name string
		s    string
		r    *rune
	}{
		{"quit", k.Quit, &keys.Quit},
		{"load", k.Load, &keys.Load},
		{"interrupt", k.Interrupt, &keys.Interrupt},
	} {
		if utf8.RuneCountInString(f.s) != 1 {
			return keys, fmt.Errorf("keys.%s: %q is not a single character", f.name, f.s)
		}
		*f.r, _ = utf8.DecodeRuneInString(f.s)
	}
	if keys.Quit == keys.Load || keys.Quit == keys.Interrupt || keys.Load == keys.Interrupt {
		return keys, errors.New("keys: quit, load and interrupt must differ")
	}
	return keys, nil
}

func parseKey(name string) (tcell.Key, error) {
	if strings.EqualFold(name, "escape") {
		return tcell.KeyEscape, nil
	}
	for k, n := range tcell.KeyNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}
