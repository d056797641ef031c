// Package device manages this client's identity on the server: registering on
// first contact, heartbeating on later syncs, and re-registering when the
// server has forgotten the device.
package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/client/client"
	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/logging"
)

// Version is stamped into the reported user agent.
const Version = "1.0"

// Registry keeps the device id durable in the metadata store so the identity
// survives restarts.
type Registry struct {
	client   client.Client
	metadata metadata.Repository
	logger   logging.Logger
}

func NewRegistry(c client.Client, m metadata.Repository, logger logging.Logger) *Registry {
	return &Registry{client: c, metadata: m, logger: logger.With("component", "device")}
}

// EnsureRegistered returns a device id the server currently recognizes.
//
// A cached id is verified with a heartbeat first. Only when the server
// explicitly reports the device gone is a fresh registration performed; a
// transient failure propagates unchanged so a flaky network cannot multiply
// device records.
func (r *Registry) EnsureRegistered(ctx context.Context) (string, error) {
	id, err := r.metadata.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", err
	}

	if id != "" {
		err = r.client.Heartbeat(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, common.ErrorDeviceGone) {
			return "", err
		}
		r.logger.Warn(ctx, "device no longer known to server, re-registering", "deviceID", id)
	}

	return r.register(ctx)
}

func (r *Registry) register(ctx context.Context) (string, error) {
	req := describeHost()
	dev, err := r.client.RegisterDevice(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to register device: %w", err)
	}

	// Overwrites any stale cached id.
	if err := r.metadata.Set(ctx, metadata.KeyDeviceID, dev.ID); err != nil {
		return "", err
	}

	r.logger.Info(ctx, "device registered", "deviceID", dev.ID, "name", dev.DeviceName)
	return dev.ID, nil
}

// Deactivate removes the device on the server and drops the cached id.
func (r *Registry) Deactivate(ctx context.Context, deviceID string) error {
	if err := r.client.DeactivateDevice(ctx, deviceID); err != nil {
		return err
	}

	cached, err := r.metadata.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return err
	}
	if cached == deviceID {
		return r.metadata.Delete(ctx, metadata.KeyDeviceID)
	}
	return nil
}

func describeHost() *api.RegisterDeviceRequest {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "Desktop"
	}
	return &api.RegisterDeviceRequest{
		DeviceName: fmt.Sprintf("%s (%s) - %s", host, runtime.GOOS, time.Now().Format("2006-01-02")),
		DeviceType: "desktop",
		UserAgent:  fmt.Sprintf("papertrail-cli/%s go/%s", Version, runtime.Version()),
	}
}
