package conf

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/singspeak/internal/errors"
)

// Dump writes the effective settings as YAML, for the config dump
// command and for debugging what a running instance actually loaded.
func Dump(w io.Writer, s *Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "dump-config").
			Build()
	}
	return enc.Close()
}
