// Package theme maps token classes to display styles. Themes are read from
// the [theme] table of a TOML config file, on top of a built-in default.
package theme

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/sheetlex/internal/util"
)

// Style is how one tag is displayed. Colors are hex strings such as "#ff8800"
// or ANSI color numbers such as "6"; hex colors work for every output format.
type Style struct {
	Foreground string `toml:"fg"`
	Background string `toml:"bg"`
	Bold       bool   `toml:"bold"`
	Italic     bool   `toml:"italic"`
	Underline  bool   `toml:"underline"`
}

// IsZero returns whether the style changes nothing.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Theme is a named set of styles keyed by tag.
type Theme struct {
	Name   string           `toml:"name"`
	Styles map[string]Style `toml:"styles"`
}

// Tags returns all tags the theme has a style for, sorted.
func (th Theme) Tags() []string {
	return util.OrderedKeys(th.Styles)
}

// Lookup finds the style for a token class. Tags later in the class are more
// specific and are checked first, so "constant.other event note note-c4" uses
// a style for "note-c4" if the theme has one, then "note", and so on. A dotted
// tag such as "paren.lparen" also falls back to its leading parts ("paren").
func (th Theme) Lookup(class string) (Style, bool) {
	tags := strings.Fields(class)
	for i := len(tags) - 1; i >= 0; i-- {
		tag := tags[i]
		for tag != "" {
			if st, ok := th.Styles[tag]; ok {
				return st, true
			}
			dot := strings.LastIndexByte(tag, '.')
			if dot < 0 {
				break
			}
			tag = tag[:dot]
		}
	}
	return Style{}, false
}

// Merge returns a new Theme with the styles of other laid over those of th.
func (th Theme) Merge(other Theme) Theme {
	merged := Theme{
		Name:   th.Name,
		Styles: make(map[string]Style, len(th.Styles)+len(other.Styles)),
	}
	if other.Name != "" {
		merged.Name = other.Name
	}
	for k, v := range th.Styles {
		merged.Styles[k] = v
	}
	for k, v := range other.Styles {
		merged.Styles[k] = v
	}
	return merged
}

type configFile struct {
	Theme Theme `toml:"theme"`
}

// Parse reads the [theme] table of TOML config data and lays it over the
// default theme.
func Parse(data []byte) (Theme, error) {
	var cf configFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return Theme{}, fmt.Errorf("parse theme: %w", err)
	}
	return Default().Merge(cf.Theme), nil
}

// Load reads the [theme] table of the TOML config file at path and lays it
// over the default theme.
func Load(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme: %w", err)
	}
	return Parse(data)
}

const defaultTOML = `
[theme]
name = "default"

[theme.styles.keyword]
fg = "#c678dd"
bold = true

[theme.styles.string]
fg = "#98c379"

[theme.styles.eol]
fg = "#5c6370"

[theme.styles.paren]
fg = "#e5c07b"
bold = true

[theme.styles.note]
fg = "#61afef"

[theme.styles.cluster]
fg = "#56b6c2"

[theme.styles.chord]
fg = "#e06c75"
bold = true

[theme.styles.rest]
fg = "#5c6370"
italic = true

[theme.styles.meta]
fg = "#d19a66"

[theme.styles.eob]
fg = "#abb2bf"
bold = true

[theme.styles.variable]
fg = "#d19a66"

[theme.styles.comment]
fg = "#7f848e"
italic = true

[theme.styles.link]
fg = "#7f848e"
underline = true
`

var defaultTheme Theme

func init() {
	var cf configFile
	if _, err := toml.Decode(defaultTOML, &cf); err != nil {
		panic(fmt.Sprintf("decode default theme: %s", err))
	}
	defaultTheme = cf.Theme
}

// Default returns a copy of the built-in theme.
func Default() Theme {
	return Theme{}.Merge(defaultTheme)
}
