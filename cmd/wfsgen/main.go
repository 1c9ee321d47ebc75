// Command wfsgen generates waveform solver input files from a configuration,
// an event catalogue and a station inventory.
//
// Usage:
//
//	wfsgen -list
//	wfsgen -describe SPECFEM3D_CARTESIAN
//	wfsgen -backend SPECFEM3D_CARTESIAN \
//	  -config par.yaml -set NPROC=4 \
//	  -events events.xml -stations stations.xml \
//	  -station-filter 'TA.*' -out ./run01
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/backend/catalog"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/generator"
	"github.com/couchcryptid/wfs-input-generator/internal/observability"
	"github.com/couchcryptid/wfs-input-generator/internal/records"
	"gopkg.in/yaml.v3"
)

// listFlag collects every occurrence of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	list          bool
	describe      string
	backend       string
	configs       listFlag
	sets          listFlag
	events        listFlag
	stations      listFlag
	eventFilter   listFlag
	stationFilter listFlag
	out           string
	logLevel      string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string) (*options, error) {
	var o options
	fs := flag.NewFlagSet("wfsgen", flag.ContinueOnError)
	fs.BoolVar(&o.list, "list", false, "list the available backends")
	fs.StringVar(&o.describe, "describe", "", "print the configuration parameters of a backend")
	fs.StringVar(&o.backend, "backend", "", "backend to render")
	fs.Var(&o.configs, "config", "JSON or YAML configuration file (repeatable, later files win)")
	fs.Var(&o.sets, "set", "single parameter as NAME=VALUE (repeatable, applied after -config)")
	fs.Var(&o.events, "events", "QuakeML or JSON event file (repeatable)")
	fs.Var(&o.stations, "stations", "StationXML or JSON station file (repeatable)")
	fs.Var(&o.eventFilter, "event-filter", "event public id to keep (repeatable)")
	fs.Var(&o.stationFilter, "station-filter", "NET.STA glob of stations to keep (repeatable)")
	fs.StringVar(&o.out, "out", "", "existing output directory; files are printed when empty")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !o.list && o.describe == "" && o.backend == "" {
		fs.Usage()
		return nil, errors.New("one of -list, -describe or -backend is required")
	}
	return &o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(o.logLevel, "text")
	sess := generator.NewSession(catalog.New(logger), logger)

	switch {
	case o.list:
		for _, name := range sess.Backends() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	case o.describe != "":
		return describe(stdout, sess, o.describe)
	}

	for _, path := range o.configs {
		if err := sess.AddConfigurationFile(path); err != nil {
			return err
		}
	}
	for _, kv := range o.sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid -set %q: want NAME=VALUE", kv)
		}
		sess.Set(name, scalar(value))
	}

	for _, path := range o.events {
		if _, err := sess.AddEventFile(path); err != nil && !rejected(err) {
			return err
		}
	}
	for _, path := range o.stations {
		if _, err := sess.AddStationFile(path); err != nil && !rejected(err) {
			return err
		}
	}

	sess.SetEventFilter(o.eventFilter...)
	if err := sess.SetStationFilter(o.stationFilter...); err != nil {
		return err
	}

	files, err := sess.Write(o.backend, o.out)
	if err != nil {
		return err
	}
	if o.out != "" {
		fmt.Fprintf(stdout, "wrote %s input files to %s\n", o.backend, o.out)
		return nil
	}
	printFiles(stdout, files)
	return nil
}

// rejected reports whether err only lists rejected records, which the
// session has logged while keeping the valid ones. An unreadable file is
// not a rejection.
func rejected(err error) bool {
	var ae *records.AddError
	if !errors.As(err, &ae) {
		return false
	}
	for _, p := range ae.Problems {
		var ire *domain.InvalidRecordError
		if errors.As(p, &ire) && ire.Index < 0 {
			return false
		}
	}
	return true
}

// scalar reads a -set value as YAML so numbers and lists keep their type.
func scalar(text string) any {
	if zeroPadded(text) {
		return text
	}
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil || v == nil {
		return text
	}
	return v
}

// zeroPadded reports whether text is a number written with a leading zero,
// which YAML would otherwise read as octal.
func zeroPadded(text string) bool {
	digits := strings.TrimLeft(strings.TrimSpace(text), "+-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9'
}

func describe(w io.Writer, sess *generator.Session, name string) error {
	s, err := sess.ConfigParams(name)
	if err != nil {
		return err
	}
	for _, p := range s.Parameters() {
		if p.Required {
			fmt.Fprintf(w, "%s (%s, required)\n", p.Name, p.Rule)
		} else {
			fmt.Fprintf(w, "%s (%s, default %v)\n", p.Name, p.Rule, p.Default)
		}
		if p.Description != "" {
			fmt.Fprintf(w, "    %s\n", p.Description)
		}
	}
	return nil
}

func printFiles(w io.Writer, files map[string]string) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "==> %s <==\n%s\n", name, files[name])
	}
}
