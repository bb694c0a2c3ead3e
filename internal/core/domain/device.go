package domain

import "fmt"

// Device is one inventory entry: a switch the run will reconcile.
type Device struct {
	Name     string `json:"name" yaml:"name"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
}

// Addr returns the dial address, defaulting the SSH port.
func (d Device) Addr() string {
	port := d.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", d.Host, port)
}

// Credentials is the shared login injected into every device session.
type Credentials struct {
	Username string
	Password string
}
