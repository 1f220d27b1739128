package imou

import (
	"context"
	"sync"

	"github.com/korovkin/limiter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultDiscoverConcurrency = 4

// Discover enumerates the devices registered to the account and
// initializes each of them, returning a map of device name to device.
// Device initialization is fanned out with bounded concurrency.
func Discover(ctx context.Context, api API) (map[string]*Device, error) {
	return DiscoverWithConcurrency(ctx, api, defaultDiscoverConcurrency)
}

// DiscoverWithConcurrency is Discover with an explicit limit on the
// number of devices initialized at once.
func DiscoverWithConcurrency(ctx context.Context, api API, maxConcurrent int) (map[string]*Device, error) {
	logrus.Debug("starting discovery")

	list, err := api.DeviceList(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing devices")
	}
	logrus.Debugf("discovered %d registered devices", list.Count)

	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	var (
		mu       sync.Mutex
		devices  = make(map[string]*Device, len(list.DeviceList))
		firstErr error
	)

	limit := limiter.NewConcurrencyLimiter(maxConcurrent)
	for _, summary := range list.DeviceList {
		deviceID := summary.DeviceID
		limit.ExecuteWithTicket(func(ticket int) {
			device := NewDevice(api, deviceID)
			err := device.Initialize(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "initializing device %s", deviceID)
				}
				return
			}
			logrus.Debugf("   - %s", device)
			devices[device.Name()] = device
		})
	}
	limit.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return devices, nil
}
