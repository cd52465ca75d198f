package gateway

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/simonvetter/modbus"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

// Gateway serves the I/O image over Modbus TCP.
type Gateway struct {
	table   *image.Table
	mapping *Mapping
	server  *modbus.ModbusServer
}

// New creates a gateway over the given table and address mapping.
func New(table *image.Table, mapping *Mapping) *Gateway {
	return &Gateway{table: table, mapping: mapping}
}

// Start begins accepting Modbus TCP clients on url
// (e.g. "tcp://0.0.0.0:5502").
func (g *Gateway) Start(url string, maxClients uint) error {
	server, err := modbus.NewServer(&modbus.ServerConfiguration{
		URL:        url,
		Timeout:    30 * time.Second,
		MaxClients: maxClients,
	}, g)
	if err != nil {
		return fmt.Errorf("create modbus server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("start modbus server: %w", err)
	}
	g.server = server
	slog.Info("modbus gateway listening", "url", url, "max_clients", maxClients)
	return nil
}

// Stop closes the listener and all client connections.
func (g *Gateway) Stop() error {
	if g.server == nil {
		return nil
	}
	if err := g.server.Stop(); err != nil {
		return fmt.Errorf("stop modbus server: %w", err)
	}
	slog.Info("modbus gateway stopped")
	return nil
}

// HandleCoils serves coil reads and writes (read/write bits).
func (g *Gateway) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	res := make([]bool, 0, req.Quantity)

	for i := uint16(0); i < req.Quantity; i++ {
		id, ok := g.mapping.Coils[req.Addr+i]
		if !ok {
			return nil, modbus.ErrIllegalDataAddress
		}

		if req.IsWrite {
			g.table.Write(id, ladder.Bit(req.Args[i]))
			res = append(res, req.Args[i])
		} else {
			res = append(res, g.table.ReadBit(id))
		}
	}

	return res, nil
}

// HandleDiscreteInputs serves discrete input reads (read-only bits).
func (g *Gateway) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	res := make([]bool, 0, req.Quantity)

	for i := uint16(0); i < req.Quantity; i++ {
		id, ok := g.mapping.DiscreteInputs[req.Addr+i]
		if !ok {
			return nil, modbus.ErrIllegalDataAddress
		}
		res = append(res, g.table.ReadBit(id))
	}

	return res, nil
}

// HandleHoldingRegisters serves holding register reads and writes
// (read/write words).
func (g *Gateway) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	res := make([]uint16, 0, req.Quantity)

	for i := uint16(0); i < req.Quantity; i++ {
		id, ok := g.mapping.HoldingRegisters[req.Addr+i]
		if !ok {
			return nil, modbus.ErrIllegalDataAddress
		}

		if req.IsWrite {
			g.table.Write(id, ladder.Word(int32(int16(req.Args[i]))))
			res = append(res, req.Args[i])
		} else {
			res = append(res, uint16(g.table.ReadWord(id)))
		}
	}

	return res, nil
}

// HandleInputRegisters serves input register reads (read-only words).
func (g *Gateway) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	res := make([]uint16, 0, req.Quantity)

	for i := uint16(0); i < req.Quantity; i++ {
		id, ok := g.mapping.InputRegisters[req.Addr+i]
		if !ok {
			return nil, modbus.ErrIllegalDataAddress
		}
		res = append(res, uint16(g.table.ReadWord(id)))
	}

	return res, nil
}
