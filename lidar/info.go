package lidar

import (
	"context"
	"fmt"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// SensorState returns the II status information (model, laser, motor
// speed, measurement mode, sensor time, diagnosis).
func (c *Client) SensorState(ctx context.Context) (map[string]string, error) {
	c.logInfo("retrieving sensor state")
	return c.info(ctx, "sensor state", protocol.CmdSensorState)
}

// Version returns the VV manufacturing information (vendor, product,
// firmware, protocol, serial number).
func (c *Client) Version(ctx context.Context) (map[string]string, error) {
	c.logInfo("retrieving version information")
	return c.info(ctx, "version", protocol.CmdVersion)
}

// Parameters reads the PP sensor parameters. Not valid in the time
// adjustment state.
func (c *Client) Parameters(ctx context.Context) (*protocol.Parameters, error) {
	c.logInfo("retrieving sensor parameters")
	info, err := c.info(ctx, "parameters", protocol.CmdParameters)
	if err != nil {
		return nil, err
	}
	p, err := protocol.ParseParameters(info)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	return p, nil
}

// UpdateInfo reads the sensor parameters and stores them in the client.
// FullScan and Params use the stored values.
func (c *Client) UpdateInfo(ctx context.Context) error {
	p, err := c.Parameters(ctx)
	if err != nil {
		return err
	}
	c.params = *p
	c.logDebug("sensor parameters updated",
		"model", p.Model,
		"min_step", p.MinStep,
		"max_step", p.MaxStep,
		"scan_rpm", p.ScanRPM,
	)
	return nil
}

func (c *Client) info(ctx context.Context, op, name string) (map[string]string, error) {
	cmd, err := protocol.InfoCmd(name)
	if err != nil {
		return nil, err
	}
	f, err := c.exchange(ctx, op, cmd)
	if err != nil {
		return nil, err
	}
	info, err := protocol.ParseInfo(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return info, nil
}
