// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sysstats/sysstats/lib/testutil"
)

const agxOutput = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>IOClass</key>
		<string>AGXAcceleratorG13X</string>
		<key>IOMatchCategory</key>
		<string>IOAccelerator</string>
		<key>IORegistryEntryName</key>
		<string>AGXAcceleratorG13X</string>
		<key>PerformanceStatistics</key>
		<dict>
			<key>Device Utilization %</key>
			<integer>11</integer>
			<key>Renderer Utilization %</key>
			<integer>8</integer>
			<key>Tiler Utilization %</key>
			<integer>9</integer>
			<key>recoveryCount</key>
			<integer>0</integer>
		</dict>
		<key>IORegistryEntryChildren</key>
		<array>
			<dict>
				<key>IORegistryEntryName</key>
				<string>AGXDeviceUserClient</string>
				<key>IOUserClientCreator</key>
				<string>pid 412, WindowServer</string>
				<key>Device Utilization %</key>
				<integer>99</integer>
			</dict>
		</array>
	</dict>
	<dict>
		<key>IORegistryEntryName</key>
		<string>AGXAcceleratorG13X@1</string>
		<key>GPUConfigurationVariable</key>
		<dict>
			<key>gpu_gen</key>
			<integer>13</integer>
			<key>num_cores</key>
			<integer>8</integer>
		</dict>
		<key>CoreFrequencies</key>
		<array>
			<integer>396</integer>
		</array>
	</dict>
</array>
</plist>
`

func TestParseIORegistry(t *testing.T) {
	devices, err := ParseIORegistry("AGXAccelerator", []byte(agxOutput))
	if err != nil {
		t.Fatalf("ParseIORegistry: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2 top-level objects: %+v", len(devices), devices)
	}

	first := devices[0]
	if first.Name != "AGXAcceleratorG13X" || first.Class != "AGXAccelerator" {
		t.Errorf("first device = %s/%s", first.Class, first.Name)
	}
	if got := first.Properties["IOClass"]; got != "AGXAcceleratorG13X" {
		t.Errorf("IOClass = %q", got)
	}
	if value, ok := first.Int("Device Utilization %"); !ok || value != 11 {
		t.Errorf("flattened Device Utilization %% = %d, %v; want 11 (not the child's 99)", value, ok)
	}
	if _, ok := first.Properties["IOUserClientCreator"]; ok {
		t.Error("child object property leaked into the parent device")
	}

	second := devices[1]
	if second.Name != "AGXAcceleratorG13X@1" {
		t.Errorf("second device name = %q", second.Name)
	}
	if value, ok := second.Int("num_cores"); !ok || value != 8 {
		t.Errorf("num_cores = %d, %v; want 8", value, ok)
	}
	if _, ok := second.Properties["CoreFrequencies"]; ok {
		t.Error("array property was flattened into a scalar")
	}
}

func TestParseIORegistryEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		devices int
		wantErr bool
	}{
		{name: "no output", output: "", devices: 0},
		{name: "empty array", output: `<plist version="1.0"><array/></plist>`, devices: 0},
		{name: "not a property list", output: "+-o AGXAcceleratorG13X  <class AGXAcceleratorG13X>", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			devices, err := ParseIORegistry("AGXAccelerator", []byte(test.output))
			if (err != nil) != test.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, test.wantErr)
			}
			if len(devices) != test.devices {
				t.Errorf("got %d devices, want %d", len(devices), test.devices)
			}
		})
	}
}

func TestFlattenNestedDictionary(t *testing.T) {
	properties := map[string]string{}
	flattenIORegDictionary(map[string]any{
		"outer": map[string]any{
			"inner": uint64(5),
			"name":  "a,b",
			"plain": "shadowed",
			"deeper": map[string]any{
				"ratio":  0.25,
				"signed": int64(-3),
			},
		},
		"plain":   uint64(1),
		"enabled": true,
		"blob":    []byte{1, 2},
	}, properties)

	want := map[string]string{
		"inner":   "5",
		"name":    "a,b",
		"plain":   "1",
		"ratio":   "0.25",
		"signed":  "-3",
		"enabled": "true",
	}
	if !reflect.DeepEqual(properties, want) {
		t.Errorf("flattened = %v, want %v", properties, want)
	}
}

func TestIORegistryDevicesRunsIoreg(t *testing.T) {
	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte(agxOutput), nil
	}
	registry := NewIORegistry(run, testutil.Logger())

	devices, err := registry.Devices(context.Background(), "AGXAccelerator")
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("got %d devices, want 2", len(devices))
	}
	wantArgs := []string{"ioreg", "-a", "-r", "-l", "-c", "AGXAccelerator"}
	if !reflect.DeepEqual(gotArgs, wantArgs) {
		t.Errorf("command = %v, want %v", gotArgs, wantArgs)
	}
}

func TestIORegistryCommandFailure(t *testing.T) {
	run := func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	if _, err := NewIORegistry(run, testutil.Logger()).Devices(context.Background(), "IOAccelerator"); err == nil {
		t.Error("Devices succeeded although ioreg failed")
	}
}
