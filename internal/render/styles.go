package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/raggleton/htcondenser/internal/status"
)

// token describes one named style element. Concrete colours replace each
// other (last one wins); attributes such as bold accumulate independently.
type token struct {
	attr    color.Attribute
	isColor bool
}

var tokens = map[string]token{
	"black":   {color.FgBlack, true},
	"red":     {color.FgRed, true},
	"green":   {color.FgGreen, true},
	"yellow":  {color.FgYellow, true},
	"blue":    {color.FgBlue, true},
	"magenta": {color.FgMagenta, true},
	"cyan":    {color.FgCyan, true},
	"white":   {color.FgWhite, true},

	"bold":      {color.Bold, false},
	"faint":     {color.Faint, false},
	"italic":    {color.Italic, false},
	"underline": {color.Underline, false},
	"blink":     {color.BlinkSlow, false},
	"reverse":   {color.ReverseVideo, false},
}

// ParseTokens compiles a "+"-joined token string such as "bold + red" into
// a colour value. When several concrete colours appear, the last one wins;
// non-colour attributes all apply.
func ParseTokens(spec string) (*color.Color, error) {
	var (
		attrs     []color.Attribute
		lastColor *color.Attribute
	)
	for _, part := range strings.Split(spec, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		tok, ok := tokens[name]
		if !ok {
			return nil, fmt.Errorf("unknown style token %q", name)
		}
		if tok.isColor {
			attr := tok.attr
			lastColor = &attr
			continue
		}
		attrs = append(attrs, tok.attr)
	}
	if lastColor != nil {
		attrs = append(attrs, *lastColor)
	}
	return color.New(attrs...), nil
}

// styleConfig is the YAML shape of a user style-rule file.
type styleConfig struct {
	// Statuses maps state names (Unready, Idle, ...) to token strings.
	Statuses map[string]string `yaml:"statuses"`
	// Formatting maps section labels (filename, next_update) to tokens.
	Formatting map[string]string `yaml:"formatting"`
}

// Styles is a compiled style mapping used by the renderer.
type Styles struct {
	states     map[status.State]*color.Color
	formatting map[string]*color.Color
}

// DefaultStyles mirrors the colour scheme users expect out of the box.
func DefaultStyles() *Styles {
	s, err := compile(styleConfig{
		Statuses: map[string]string{
			"Unready": "faint",
			"Idle":    "yellow",
			"Running": "cyan",
			"Done":    "green",
			"Failed":  "bold + red",
			"Error":   "bold + magenta",
		},
		Formatting: map[string]string{
			"filename":    "bold",
			"next_update": "faint",
		},
	})
	if err != nil {
		// The built-in table only uses known tokens.
		panic(err)
	}
	return s
}

// LoadStyles reads a YAML style-rule file. States or sections the file does
// not mention keep their defaults.
func LoadStyles(path string) (*Styles, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg styleConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing style rules %s: %w", path, err)
	}
	base := DefaultStyles()
	overlay, err := compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("style rules %s: %w", path, err)
	}
	for state, c := range overlay.states {
		base.states[state] = c
	}
	for section, c := range overlay.formatting {
		base.formatting[section] = c
	}
	return base, nil
}

func compile(cfg styleConfig) (*Styles, error) {
	byName := make(map[string]status.State, len(status.AllStates))
	for _, st := range status.AllStates {
		byName[strings.ToLower(st.String())] = st
	}

	s := &Styles{
		states:     make(map[status.State]*color.Color),
		formatting: make(map[string]*color.Color),
	}
	for name, spec := range cfg.Statuses {
		st, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown state %q in style rules", name)
		}
		c, err := ParseTokens(spec)
		if err != nil {
			return nil, err
		}
		s.states[st] = c
	}
	for section, spec := range cfg.Formatting {
		c, err := ParseTokens(spec)
		if err != nil {
			return nil, err
		}
		s.formatting[strings.ToLower(section)] = c
	}
	return s, nil
}

// state returns the colour for a node state, defaulting to no styling.
func (s *Styles) state(st status.State) *color.Color {
	if c, ok := s.states[st]; ok {
		return c
	}
	return color.New()
}

// section returns the colour for a formatting label, defaulting to none.
func (s *Styles) section(label string) *color.Color {
	if c, ok := s.formatting[strings.ToLower(label)]; ok {
		return c
	}
	return color.New()
}
