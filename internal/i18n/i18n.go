// Package i18n provides the localized user-facing messages of the
// exporter. Translations live in embedded lang/<locale>.txt dictionaries
// and are served through a golang.org/x/text message printer.
package i18n

import (
	"bufio"
	"embed"
	"io"
	"regexp"
	"strings"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	CompletedOutput                      = "CompletedOutput"
	CompletedOutputCount                 = "CompletedOutputCount"
	ObjectsWithDifferentOriginsWereFound = "ObjectsWithDifferentOriginsWereFound"
	NoEligibleObjects                    = "NoEligibleObjects"
	ExportFailed                         = "ExportFailed"
	Watching                             = "Watching"
)

// Flag description keys.
const (
	DescSelection      = "desc_selection"
	DescChildren       = "desc_children"
	DescMeshModifiers  = "desc_mesh_modifiers"
	DescOriginToCenter = "desc_origin_to_center"
	DescGlobalMag      = "desc_global_mag"
	DescGlobalScale    = "desc_global_scale"
	DescAxisForward    = "desc_axis_forward"
	DescAxisUp         = "desc_axis_up"
	DescASCII          = "desc_ascii"
	DescOutput         = "desc_output"
)

//go:embed lang/*.txt
var langFS embed.FS

// Dictionary maps message keys to translated format strings.
type Dictionary map[string]string

var keyLine = regexp.MustCompile(`^([^:]+):\s*(.*)$`)

// Parse reads a dictionary. A "key: text" line opens a key; following
// lines that are not themselves "key: text" lines are appended to the
// open key. While no key is open, blank lines and lines starting with
// '#' are skipped. A "#!END!" line closes the open key.
func Parse(r io.Reader) (Dictionary, error) {
	dict := make(Dictionary)
	scanner := bufio.NewScanner(r)
	key := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if key == "" {
			if line == "" || line[0] == '#' {
				continue
			}
		} else if line == "#!END!" {
			key = ""
			continue
		}

		if m := keyLine.FindStringSubmatch(line); m != nil {
			key = m[1]
			dict[key] = m[2]
		} else if key != "" {
			dict[key] += line
		}
	}
	return dict, scanner.Err()
}

// Load returns the embedded dictionary for tag, or nil when none exists.
// The full tag is tried first, then its base language.
func Load(tag language.Tag) (Dictionary, error) {
	base, _ := tag.Base()
	for _, name := range []string{tag.String(), base.String()} {
		f, err := langFS.Open("lang/" + name + ".txt")
		if err != nil {
			continue
		}
		defer f.Close()
		return Parse(f)
	}
	return nil, nil
}

// New returns a printer for tag. English messages are always available
// and are used for keys missing from the tag's dictionary.
func New(tag language.Tag) (*message.Printer, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	english, err := Load(language.English)
	if err != nil {
		return nil, err
	}
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			return nil, err
		}
	}

	if base, _ := tag.Base(); base.String() != "en" {
		dict, err := Load(tag)
		if err != nil {
			return nil, err
		}
		target := language.Make(base.String())
		for key := range english {
			msg, ok := dict[key]
			if !ok {
				msg = english[key]
			}
			if err := b.SetString(target, key, msg); err != nil {
				return nil, err
			}
		}
	}

	return message.NewPrinter(tag, message.Catalog(b)), nil
}

// Detect returns the user's language from the environment, or English
// when it cannot be determined.
func Detect() language.Tag {
	name, err := locale.GetLocale()
	if err != nil || name == "" {
		return language.English
	}
	return ParseTag(name)
}

// ParseTag parses a locale name such as "ja_JP.UTF-8" or "en-US",
// returning English when it is not recognized.
func ParseTag(name string) language.Tag {
	name, _, _ = strings.Cut(name, ".")
	name = strings.ReplaceAll(name, "_", "-")
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	return tag
}
