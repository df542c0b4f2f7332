// Package config loads the generator configuration from TOML files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultConfig []byte

type Output struct {
	// Dir is the directory generated files are written to.
	Dir string `toml:"dir"`
	// Indent replaces the tab placeholder in generated code.
	Indent string `toml:"indent"`
}

type Naming struct {
	// Namespace is prepended to every consumer-visible type name.
	Namespace     string   `toml:"namespace"`
	ReservedWords []string `toml:"reserved-words"`
}

type Generate struct {
	// Jobs limits the number of definitions generated concurrently.
	// Zero means one per CPU.
	Jobs int `toml:"jobs"`
	// SkipDisabled skips definitions marked as disabled. Defaults to
	// true.
	SkipDisabled *bool `toml:"skip-disabled"`
}

type Rule struct {
	Select struct {
		Name *regexp.Regexp `toml:"name"`
		Kind string         `toml:"kind"`
	} `toml:"select"`
	Actions struct {
		Include  *bool  `toml:"include"`
		Rename   string `toml:"rename"`
		ToCasing string `toml:"to-casing"`
	} `toml:"action"`
}

type Config struct {
	Imports  []string `toml:"imports"`
	Output   Output   `toml:"output"`
	Naming   Naming   `toml:"naming"`
	Generate Generate `toml:"generate"`
	Rules    []Rule   `toml:"rule"`
}

// ShouldSkipDisabled reports whether disabled definitions are left out.
func (c *Config) ShouldSkipDisabled() bool {
	return c.Generate.SkipDisabled == nil || *c.Generate.SkipDisabled
}

type Error struct {
	filePath string
	err      error  // short, single-line error
	str      string // full, multi-line error string, or err string, if none
}

// Error returns a short error message.
func (e *Error) Error() string {
	return e.filePath + ": " + e.err.Error()
}

// String returns the full multi-line error string.
func (e *Error) String() string {
	if e.str != "" {
		return "Error in file " + strconv.Quote(e.filePath) + ":\n" + e.str
	} else {
		return e.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

func decode(data []byte) (*Config, error) {
	c := &Config{}
	err := toml.NewDecoder(bytes.NewReader(data)).
		DisallowUnknownFields().
		Decode(c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := decode(defaultConfig)
	if err != nil {
		panic("programmer error: invalid default config: " + err.Error())
	}
	return c
}

// LoadOrCreateDefault loads the file at path, first writing the built-in
// configuration there if it does not exist.
func LoadOrCreateDefault(path string) (c *Config, created bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, defaultConfig, 0666); err != nil {
			return nil, false, err
		}
		created = true
	}
	c, err = Load(path)
	return c, created, err
}

func Load(path string) (_ *Config, err error) {
	defer func() {
		if err != nil {
			if tErr := (&toml.DecodeError{}); errors.As(err, &tErr) {
				err = &Error{filePath: path, err: err, str: tErr.String()}
			} else if tErr := (&toml.StrictMissingError{}); errors.As(err, &tErr) {
				err = &Error{filePath: path, err: err, str: tErr.String()}
			} else {
				err = &Error{filePath: path, err: err}
			}
		}
	}()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c, err := decode(file)
	if err != nil {
		return nil, err
	}

	var importedCs []*Config // collect imported files first so their imports don't leak into our file's imports
	for _, imp := range c.Imports {
		newC, err := Load(imp)
		if err != nil {
			return nil, err
		}
		importedCs = append(importedCs, newC)
	}
	for _, newC := range importedCs {
		if err := mergo.Merge(c, newC, mergo.WithAppendSlice); err != nil {
			return nil, err
		}
	}

	return c, nil
}
