package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
)

// ErrNoDevice reports that no usable capture device could be resolved. It is
// fatal for the capture side only; the analysis side keeps reading whatever
// the buffer already holds.
var ErrNoDevice = errors.New("no usable input device")

// Initialize sets up the PortAudio subsystem. Must be called before any
// other capture operation and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts the PortAudio subsystem down. Defer it right after
// Initialize.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Device describes one host audio device.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowInputLatency   time.Duration
	HighInputLatency  time.Duration
}

// Swappable for tests.
var paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
	return portaudio.Devices()
}

// HostDevices enumerates all devices the host knows about.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowInputLatency:   info.DefaultLowInputLatency,
			HighInputLatency:  info.DefaultHighInputLatency,
		}
	}
	return devices, nil
}

// FindInputDevice returns the ID of the input device matching name exactly,
// or -1 when name is empty or matches nothing. Selection is by name rather
// than index because sound servers renumber devices across hotplug events.
func FindInputDevice(devices []Device, name string) int {
	if name == "" {
		return -1
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d.ID
		}
	}
	return -1
}

// InputDevice resolves the capture device: the configured name when it
// matches an input device, otherwise the host default. A configured name
// that matches nothing degrades to the default with a warning; no usable
// default yields ErrNoDevice.
func InputDevice(name string) (*portaudio.DeviceInfo, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{ID: i, Name: info.Name, MaxInputChannels: info.MaxInputChannels}
	}
	if id := FindInputDevice(devices, name); id >= 0 {
		return infos[id], nil
	}
	if name != "" {
		applog.Warnf("capture: input device %q not found, using host default", name)
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	return device, nil
}

// ListDevices prints every host device with its type, channel counts,
// default sample rate and latency range.
func ListDevices() error {
	devices, err := HostDevices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for _, device := range devices {
		deviceType := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case device.MaxInputChannels > 0:
			deviceType = "Input"
		case device.MaxOutputChannels > 0:
			deviceType = "Output"
		}

		fmt.Printf("[%d] %s (%s)\n", device.ID, device.Name, deviceType)
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.LowInputLatency.Seconds()*1000,
			device.HighInputLatency.Seconds()*1000)
		fmt.Println()
	}
	return nil
}
