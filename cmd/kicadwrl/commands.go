package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/maznobu/kicadwrl/internal/config"
	"github.com/maznobu/kicadwrl/internal/export"
	"github.com/maznobu/kicadwrl/internal/i18n"
	"github.com/maznobu/kicadwrl/internal/scene"
)

func cmdExport(args []string) error {
	s, err := newSession("export", args, true, nil)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := s.export(ctx)
	newReporter(os.Stdout).result(res, err)
	return err
}

// export loads the scene and runs one export.
func (s *session) export(ctx context.Context) (*export.Result, error) {
	sc, err := scene.Load(s.scenePath)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Loaded scene", zap.String("file", s.scenePath), zap.Int("objects", len(sc.Objects())))

	e, err := export.New(sc, export.Options{
		Config:  s.cfg.Export,
		Logger:  s.log,
		Printer: s.printer,
	})
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

func cmdInfo(args []string) error {
	s, err := newSession("info", args, true, nil)
	if err != nil {
		return err
	}
	defer s.close()

	sc, err := scene.Load(s.scenePath)
	if err != nil {
		return err
	}
	r := newReporter(os.Stdout)

	r.heading(fmt.Sprintf("Scene: %s", s.scenePath))
	r.plain("Objects: %d", len(sc.Objects()))
	r.plain("")
	r.plain("  %-24s %-6s %-16s %-28s %s", "NAME", "TYPE", "PARENT", "POSITION", "FLAGS")
	for _, o := range sc.Objects() {
		parent := "-"
		if o.Parent != nil {
			parent = o.Parent.Name
		}
		p := o.Position()
		r.plain("  %-24s %-6s %-16s %-28s %s",
			o.Name, o.Kind, parent, fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z), objectFlags(o))
	}

	e, err := export.New(sc, export.Options{Config: s.cfg.Export, Logger: s.log, Printer: s.printer})
	if err != nil {
		return err
	}
	grouping, err := e.Group(sc.Objects())
	r.plain("")
	if err != nil {
		r.fail(err.Error())
		return nil
	}

	groups := grouping.Groups()
	if len(groups) == 0 {
		r.warn(s.printer.Sprintf(i18n.NoEligibleObjects))
		return nil
	}
	paths := e.OutputPaths(grouping)
	for i, g := range groups {
		names := make([]string, len(g.Objects))
		for j, o := range g.Objects {
			names[j] = o.Name
		}
		r.info(paths[i])
		r.plain("  origin (%g, %g, %g): %s", g.Key.X, g.Key.Y, g.Key.Z, strings.Join(names, ", "))
	}
	return nil
}

func objectFlags(o *scene.Object) string {
	var flags []string
	if !o.Visible {
		flags = append(flags, "hidden")
	}
	if o.Selected {
		flags = append(flags, "selected")
	}
	if o.EditMode {
		flags = append(flags, "edit")
	}
	if n := len(o.Modifiers); n > 0 {
		flags = append(flags, fmt.Sprintf("%d modifiers", n))
	}
	return strings.Join(flags, " ")
}

func cmdConfig(args []string) error {
	var (
		savePath string
		write    bool
		asTOML   bool
	)
	s, err := newSession("config", args, false, func(fs *flag.FlagSet) {
		fs.StringVar(&savePath, "save", "", "Save the configuration to this file instead of printing it")
		fs.BoolVar(&write, "write", false, "Save the configuration to the user config directory")
		fs.BoolVar(&asTOML, "toml", false, "Print as TOML instead of YAML")
	})
	if err != nil {
		return err
	}
	defer s.close()

	r := newReporter(os.Stdout)
	switch {
	case write:
		if err := s.cfg.Save(); err != nil {
			return err
		}
		r.info("Saved " + config.ConfigDir())
		return nil
	case savePath != "":
		path, err := homedir.Expand(savePath)
		if err != nil {
			return err
		}
		if err := s.cfg.SaveTo(path); err != nil {
			return err
		}
		r.info("Saved " + path)
		return nil
	}

	data, err := s.cfg.Marshal(asTOML)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
