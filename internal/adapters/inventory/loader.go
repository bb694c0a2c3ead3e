// Package inventory loads the device inventory from a YAML file.
package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

// File is the on-disk inventory format:
//
//	hosts:
//	  - name: leaf-101
//	    host: 10.1.0.101
//	    port: 22
//	    platform: nxos
type File struct {
	Hosts []domain.Device `yaml:"hosts"`
}

// Load reads and validates the inventory file.
func Load(path string) ([]domain.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(data)
}

// Parse decodes inventory YAML and rejects unusable entries.
func Parse(data []byte) ([]domain.Device, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	if len(file.Hosts) == 0 {
		return nil, fmt.Errorf("inventory contains no hosts")
	}

	seen := make(map[string]bool, len(file.Hosts))
	for i, dev := range file.Hosts {
		if dev.Name == "" {
			return nil, fmt.Errorf("inventory host %d: missing name", i)
		}
		if dev.Host == "" {
			return nil, fmt.Errorf("inventory host %q: missing address", dev.Name)
		}
		if seen[dev.Name] {
			return nil, fmt.Errorf("inventory host %q: duplicate name", dev.Name)
		}
		seen[dev.Name] = true
	}
	return file.Hosts, nil
}
