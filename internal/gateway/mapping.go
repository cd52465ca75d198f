// Package gateway exposes the I/O image over Modbus TCP.
//
// The engine core knows nothing about Modbus; the gateway is an
// external collaborator that reads and writes the thread-safe image
// table exactly like any other client. It never holds the image lock
// across a network operation - every Modbus register maps to one
// single-key table access.
package gateway

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mapping assigns Modbus data-model addresses to image IDs.
//
// The four Modbus tables map onto the image's advisory partitions:
//
//	coils             - read/write bits: command bits a Modbus master drives
//	discrete inputs   - read-only bits: the engine's outputs
//	holding registers - read/write words: setpoints and memory words
//	input registers   - read-only words: timer/counter readouts
//
// Addresses not present in the mapping respond with an illegal data
// address exception, which is how a master discovers the edges of the
// table.
type Mapping struct {
	Coils            map[uint16]string `yaml:"coils,omitempty"`
	DiscreteInputs   map[uint16]string `yaml:"discrete_inputs,omitempty"`
	HoldingRegisters map[uint16]string `yaml:"holding_registers,omitempty"`
	InputRegisters   map[uint16]string `yaml:"input_registers,omitempty"`
}

// LoadMapping reads a mapping file. Strict decoding: unknown fields
// are rejected as typos.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	var m Mapping
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	return &m, nil
}
