package streamdeck

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
)

// HostInfo es el JSON "info" que el host pasa al arrancar.
type HostInfo struct {
	Application struct {
		Font            string `json:"font"`
		Language        string `json:"language"`
		Platform        string `json:"platform"`
		PlatformVersion string `json:"platformVersion"`
		Version         string `json:"version"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
	DevicePixelRatio int               `json:"devicePixelRatio"`
	Colors           map[string]string `json:"colors"`
	Devices          []Device          `json:"devices"`
}

type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
	Size struct {
		Columns int `json:"columns"`
		Rows    int `json:"rows"`
	} `json:"size"`
}

// ActionInfo describes the action instance an inspector was opened for.
type ActionInfo struct {
	Action  string          `json:"action"`
	Context string          `json:"context"`
	Device  string          `json:"device"`
	Payload json.RawMessage `json:"payload"`
}

// ParsePluginArgs parses the single-dash flags the host passes to the plugin
// binary: -port -pluginUUID -registerEvent -info.
func ParsePluginArgs(args []string) (Params, error) {
	fs := flag.NewFlagSet("plugin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	port := fs.Int("port", 0, "host websocket port")
	uuid := fs.String("pluginUUID", "", "plugin registration uuid")
	event := fs.String("registerEvent", "", "registration event name")
	info := fs.String("info", "", "host info json")

	if err := fs.Parse(args); err != nil {
		return Params{}, fmt.Errorf("streamdeck: parse args: %w", err)
	}

	params := Params{
		Port:          *port,
		UUID:          *uuid,
		RegisterEvent: *event,
	}
	if params.Port <= 0 || params.UUID == "" || params.RegisterEvent == "" {
		return Params{}, errors.New("streamdeck: -port, -pluginUUID and -registerEvent are required")
	}

	if *info != "" {
		hi, err := ParseHostInfo(*info)
		if err != nil {
			return Params{}, err
		}
		params.Info = hi
	}

	return params, nil
}

func ParseHostInfo(raw string) (HostInfo, error) {
	var info HostInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return HostInfo{}, fmt.Errorf("streamdeck: parse info: %w", err)
	}
	return info, nil
}

func ParseActionInfo(raw string) (ActionInfo, error) {
	var info ActionInfo
	if raw == "" {
		return info, nil
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return ActionInfo{}, fmt.Errorf("streamdeck: parse action info: %w", err)
	}
	return info, nil
}
