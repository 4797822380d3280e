package config

import "flag"

// Flags are the command-line overrides shared by the export commands.
// Only flags that were given on the command line override file values.
type Flags struct {
	fs *flag.FlagSet

	config    *string
	output    *string
	selection *bool
	children  *bool
	modifiers *bool
	center    *bool
	mag       *float64
	scale     *float64
	forward   *string
	up        *string
	ascii     *bool
	lang      *string
	debug     *bool
	logFile   *string
}

// Usage keys passed to the describe function of RegisterFlags.
const (
	UsageConfig    = "config"
	UsageOutput    = "desc_output"
	UsageSelection = "desc_selection"
	UsageChildren  = "desc_children"
	UsageModifiers = "desc_mesh_modifiers"
	UsageCenter    = "desc_origin_to_center"
	UsageMag       = "desc_global_mag"
	UsageScale     = "desc_global_scale"
	UsageForward   = "desc_axis_forward"
	UsageUp        = "desc_axis_up"
	UsageASCII     = "desc_ascii"
)

// RegisterFlags defines the configuration flags on fs. describe maps a
// usage key to the help text; it may be nil.
func RegisterFlags(fs *flag.FlagSet, describe func(key string) string) *Flags {
	if describe == nil {
		describe = func(key string) string { return key }
	}
	d := Default()
	return &Flags{
		fs:        fs,
		config:    fs.String("config", "", "Path to config file (YAML or TOML)"),
		output:    fs.String("o", "", describe(UsageOutput)),
		selection: fs.Bool("selection", d.Export.SelectionOnly, describe(UsageSelection)),
		children:  fs.Bool("children", d.Export.IncludeChildren, describe(UsageChildren)),
		modifiers: fs.Bool("modifiers", d.Export.ApplyModifiers, describe(UsageModifiers)),
		center:    fs.Bool("center", d.Export.CenterOrigin, describe(UsageCenter)),
		mag:       fs.Float64("mag", d.Export.ColorAmplify, describe(UsageMag)),
		scale:     fs.Float64("scale", d.Export.GlobalScale, describe(UsageScale)),
		forward:   fs.String("forward", d.Export.AxisForward, describe(UsageForward)),
		up:        fs.String("up", d.Export.AxisUp, describe(UsageUp)),
		ascii:     fs.Bool("ascii", d.Export.ASCIIIdentifiers, describe(UsageASCII)),
		lang:      fs.String("lang", "", "Message language (en, ja); default is the system locale"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log-file", "", "Also write logs to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// applyFlags applies the flags that were set to cfg.
func (f *Flags) applyFlags(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "o":
			cfg.Export.OutputPath = *f.output
		case "selection":
			cfg.Export.SelectionOnly = *f.selection
		case "children":
			cfg.Export.IncludeChildren = *f.children
		case "modifiers":
			cfg.Export.ApplyModifiers = *f.modifiers
		case "center":
			cfg.Export.CenterOrigin = *f.center
		case "mag":
			cfg.Export.ColorAmplify = *f.mag
		case "scale":
			cfg.Export.GlobalScale = *f.scale
		case "forward":
			cfg.Export.AxisForward = *f.forward
		case "up":
			cfg.Export.AxisUp = *f.up
		case "ascii":
			cfg.Export.ASCIIIdentifiers = *f.ascii
		case "lang":
			cfg.Locale.Language = *f.lang
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = *f.logFile
		}
	})
}
