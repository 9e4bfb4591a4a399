// internal/link/spec.go
package link

import (
	"strconv"
	"strings"
)

// Kind selects a link backend.
type Kind string

const (
	KindSerial Kind = "serial"
	KindTCP    Kind = "tcp"
	KindPipe   Kind = "pipe"
)

// DefaultBaud is used when a serial spec omits the baud rate.
const DefaultBaud = 9600

// Spec is a parsed link spec string.
//
//	serial:<port>[:<baud>]   (com:<port>[:<baud>] is accepted as an alias)
//	tcp:<port>[:local]
//	pipe:<name>
type Spec struct {
	Kind Kind

	// serial
	Port string
	Baud int

	// tcp
	TCPPort int
	Local   bool

	// pipe
	Name string

	raw string
}

func (s Spec) String() string { return s.raw }

// ParseSpec parses a link spec string. Errors wrap ErrInvalidSpec.
func ParseSpec(raw string) (Spec, error) {
	kind, params, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || params == "" {
		return Spec{}, specError(raw, "expected <kind>:<params>")
	}

	s := Spec{raw: raw}

	switch strings.ToLower(kind) {
	case "serial", "com":
		parts := strings.Split(params, ":")
		if len(parts) > 2 || parts[0] == "" {
			return Spec{}, specError(raw, "expected serial:<port>[:<baud>]")
		}
		s.Kind = KindSerial
		s.Port = parts[0]
		s.Baud = DefaultBaud
		if len(parts) == 2 {
			baud, err := strconv.Atoi(parts[1])
			if err != nil || baud <= 0 {
				return Spec{}, specError(raw, "baud must be a positive integer")
			}
			s.Baud = baud
		}

	case "tcp":
		parts := strings.Split(params, ":")
		if len(parts) > 2 {
			return Spec{}, specError(raw, "expected tcp:<port>[:local]")
		}
		if len(parts) == 2 {
			if !strings.EqualFold(parts[1], "local") {
				return Spec{}, specError(raw, "second tcp parameter must be 'local'")
			}
			s.Local = true
		}
		port, err := strconv.Atoi(parts[0])
		if err != nil || port < 0 || port > 65535 {
			return Spec{}, specError(raw, "tcp port must be 0-65535")
		}
		s.Kind = KindTCP
		s.TCPPort = port

	case "pipe":
		s.Kind = KindPipe
		s.Name = params

	default:
		return Spec{}, specError(raw, "unknown link kind "+strconv.Quote(kind))
	}

	return s, nil
}
