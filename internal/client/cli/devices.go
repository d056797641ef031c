package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
)

// Devices prints every active device registered for the account, marking the
// current one.
func (a *App) Devices(ctx context.Context) error {
	devices, err := a.apiClient.ListDevices(ctx)
	if err != nil {
		return err
	}

	currentID, err := a.repos.Metadata.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No registered devices")
		return nil
	}
	for _, d := range devices {
		line := fmt.Sprintf("%s  %-30s %-8s last seen %s",
			d.ID, d.DeviceName, d.DeviceType, d.LastSeenAt.Format(time.RFC3339))
		if d.ID == currentID {
			line += "  (this device)"
		}
		fmt.Println(line)
	}
	return nil
}

// RemoveDevice deactivates a device by id, prompting for it.
func (a *App) RemoveDevice(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter device id to remove", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.registry.Deactivate(ctx, id); err != nil {
		return err
	}
	fmt.Println("Device removed")
	return nil
}
