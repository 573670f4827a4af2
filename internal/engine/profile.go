package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is a named engine invocation recipe.
type Profile struct {
	Name        string   `yaml:"name"`
	Path        string   `yaml:"path"`
	Args        []string `yaml:"args"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	MaxParallel int64    `yaml:"max_parallel"`
}

// ExecConfig converts the profile into a runner config for target.
func (p Profile) ExecConfig(target string) ExecConfig {
	return ExecConfig{
		Path:        p.Path,
		Args:        p.Args,
		Target:      target,
		Timeout:     time.Duration(p.TimeoutSec) * time.Second,
		MaxParallel: p.MaxParallel,
	}
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads engine profiles from a YAML file.
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	for i, p := range pf.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d: %w", i, ErrUnnamedProfile)
		}
		if p.Path == "" {
			return nil, fmt.Errorf("profile %q: %w", p.Name, ErrProfileWithoutPath)
		}
	}
	return pf.Profiles, nil
}

// FindProfile returns the profile with the given name.
func FindProfile(profiles []Profile, name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}
