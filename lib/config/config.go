// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/objcodec/lib/codec"
	"github.com/bureau-foundation/objcodec/transport"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "OBJCODEC_CONFIG"

// Link configures one end of an object link: which wire format the
// sender uses and which transport carries the messages.
type Link struct {
	// Format is the wire format name used by senders: "json" or
	// "msgpack". Receivers ignore it and read the marker byte.
	Format string `yaml:"format" json:"format"`

	// Transport is the transport plugin name: "inproc" or "tcp".
	Transport string `yaml:"transport" json:"transport"`

	// Address is the plugin-specific address, e.g. "inproc://default"
	// or "tcp://127.0.0.1:7891". ${VAR} and ${VAR:-default} are
	// expanded from the environment.
	Address string `yaml:"address" json:"address"`

	// Compression applies to transports that frame their messages:
	// "none", "lz4" or "zstd". Default: none.
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty"`

	// MaxMessageBytes bounds message size on both ends. Zero means the
	// transport default (8 MiB).
	MaxMessageBytes int `yaml:"max_message_bytes,omitempty" json:"max_message_bytes,omitempty"`
}

// Default returns the link used when no file is given: JSON messages
// over the in-process transport.
func Default() *Link {
	return &Link{
		Format:    "json",
		Transport: "inproc",
		Address:   "inproc://default",
	}
}

// Load loads the file named by OBJCODEC_CONFIG. There is no discovery:
// if the variable is unset, Load fails.
func Load() (*Link, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a link config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads and validates a link config file. Files ending in
// .json or .jsonc are JSON (comments and trailing commas allowed);
// anything else is YAML. Fields absent from the file keep their
// [Default] values. Unknown fields are errors.
func LoadFile(path string) (*Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	link, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return link, nil
}

// Parse decodes a link config in the syntax selected by extension
// (".json", ".jsonc" or anything else for YAML), expands variables and
// validates the result.
func Parse(data []byte, extension string) (*Link, error) {
	link := Default()
	switch strings.ToLower(extension) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(link); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// An empty document leaves the defaults in place.
		if err := decoder.Decode(link); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	link.Address = expandVariables(link.Address)
	if err := link.Validate(); err != nil {
		return nil, err
	}
	return link, nil
}

// ParsedFormat returns the wire format named by Format.
func (l *Link) ParsedFormat() (codec.Format, error) {
	return codec.ParseFormat(l.Format)
}

// TransportOptions returns the transport options described by the link.
func (l *Link) TransportOptions() (transport.Options, error) {
	compression, err := transport.ParseCompression(l.Compression)
	if err != nil {
		return transport.Options{}, err
	}
	return transport.Options{
		Address:         l.Address,
		Compression:     compression,
		MaxMessageBytes: l.MaxMessageBytes,
	}, nil
}

// Validate reports every problem with the link at once.
func (l *Link) Validate() error {
	var errs []error

	if _, err := l.ParsedFormat(); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if plugins := transport.Plugins(); !slices.Contains(plugins, l.Transport) {
		errs = append(errs, fmt.Errorf("transport must be one of %v, got %q", plugins, l.Transport))
	}
	if l.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if _, err := transport.ParseCompression(l.Compression); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}
	if l.MaxMessageBytes < 0 {
		errs = append(errs, fmt.Errorf("max_message_bytes must not be negative, got %d", l.MaxMessageBytes))
	}

	return errors.Join(errs...)
}

var variablePattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVariables expands ${VAR} and ${VAR:-default} from the
// environment.
func expandVariables(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := variablePattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
