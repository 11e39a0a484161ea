package shell

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"src.tacl.dev/pkg/interp"
)

// profile is the on-disk format of a restriction profile. Commands in the
// hide list are moved to the hidden table before the session starts, and the
// vars map seeds interpreter variables.
type profile struct {
	Hide []string          `yaml:"hide"`
	Vars map[string]string `yaml:"vars"`
}

func applyProfile(in *interp.Interp, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read profile: %w", err)
	}
	var p profile
	err = yaml.Unmarshal(data, &p)
	if err != nil {
		return fmt.Errorf("cannot parse profile %q: %w", path, err)
	}
	for name, value := range p.Vars {
		in.SetVar(name, value)
	}
	for _, name := range p.Hide {
		err := in.Hide(name, name)
		if err != nil {
			return fmt.Errorf("cannot apply profile %q: %w", path, err)
		}
	}
	return nil
}
