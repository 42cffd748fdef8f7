// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package smc

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

const (
	ioKitPath     = "/System/Library/Frameworks/IOKit.framework/IOKit"
	libSystemPath = "/usr/lib/libSystem.B.dylib"

	// kIOMainPortDefault.
	ioMainPortDefault uint32 = 0
)

// serviceNames are the controller driver classes, newest first.
var serviceNames = []string{"AppleSMC", "AppleSMCFamily"}

// clientTypes are the user-client types IOServiceOpen accepts for the
// controller across macOS releases.
var clientTypes = []uint32{0, 1, 2}

type ioKit struct {
	serviceMatching           func(name string) uintptr
	serviceGetMatchingService func(mainPort uint32, matching uintptr) uint32
	serviceOpen               func(service, owningTask, kind uint32, connect *uint32) int32
	serviceClose              func(connect uint32) int32
	objectRelease             func(object uint32) int32
	connectCallStructMethod   func(connect, selector uint32, input unsafe.Pointer, inputSize uintptr, output unsafe.Pointer, outputSize *uintptr) int32
	taskSelf                  uint32
}

var (
	loadOnce sync.Once
	loaded   *ioKit
	loadErr  error
)

func loadIOKit() (*ioKit, error) {
	loadOnce.Do(func() {
		library, err := purego.Dlopen(ioKitPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			loadErr = fmt.Errorf("smc: loading IOKit: %w", err)
			return
		}
		system, err := purego.Dlopen(libSystemPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			loadErr = fmt.Errorf("smc: loading libSystem: %w", err)
			return
		}

		kit := &ioKit{}
		purego.RegisterLibFunc(&kit.serviceMatching, library, "IOServiceMatching")
		purego.RegisterLibFunc(&kit.serviceGetMatchingService, library, "IOServiceGetMatchingService")
		purego.RegisterLibFunc(&kit.serviceOpen, library, "IOServiceOpen")
		purego.RegisterLibFunc(&kit.serviceClose, library, "IOServiceClose")
		purego.RegisterLibFunc(&kit.objectRelease, library, "IOObjectRelease")
		purego.RegisterLibFunc(&kit.connectCallStructMethod, library, "IOConnectCallStructMethod")

		// mach_task_self() is a macro over this global.
		taskSelf, err := purego.Dlsym(system, "mach_task_self_")
		if err != nil {
			loadErr = fmt.Errorf("smc: resolving mach_task_self_: %w", err)
			return
		}
		kit.taskSelf = **(**uint32)(unsafe.Pointer(&taskSelf))
		loaded = kit
	})
	return loaded, loadErr
}

// Open connects to the controller. It tries each driver class and
// each user-client type until IOServiceOpen succeeds.
func Open(logger *slog.Logger) (*Client, error) {
	kit, err := loadIOKit()
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, name := range serviceNames {
		service := kit.serviceGetMatchingService(ioMainPortDefault, kit.serviceMatching(name))
		if service == 0 {
			errs = append(errs, fmt.Errorf("no %s service", name))
			continue
		}
		for _, kind := range clientTypes {
			var connect uint32
			result := kit.serviceOpen(service, kit.taskSelf, kind, &connect)
			if result == 0 && connect != 0 {
				kit.objectRelease(service)
				logger.Debug("opened controller", "service", name, "client_type", kind)
				return NewClient(&ioConn{kit: kit, connect: connect}, logger), nil
			}
			errs = append(errs, fmt.Errorf("IOServiceOpen(%s, type %d): kern_return 0x%x", name, kind, uint32(result)))
		}
		kit.objectRelease(service)
	}
	return nil, fmt.Errorf("smc: opening controller: %w", errors.Join(errs...))
}

// ioConn is a Conn over an IOKit user-client connection.
type ioConn struct {
	kit     *ioKit
	connect uint32
}

func (c *ioConn) Call(selector uint32, input, output []byte) error {
	if len(input) < KeyDataSize || len(output) < KeyDataSize {
		return fmt.Errorf("smc: call buffers must be %d bytes", KeyDataSize)
	}
	outputSize := uintptr(KeyDataSize)
	result := c.kit.connectCallStructMethod(c.connect, selector,
		unsafe.Pointer(&input[0]), uintptr(KeyDataSize),
		unsafe.Pointer(&output[0]), &outputSize)
	if result != 0 {
		return fmt.Errorf("IOConnectCallStructMethod: kern_return 0x%x", uint32(result))
	}
	return nil
}

func (c *ioConn) Close() error {
	if c.connect == 0 {
		return nil
	}
	result := c.kit.serviceClose(c.connect)
	c.connect = 0
	if result != 0 {
		return fmt.Errorf("IOServiceClose: kern_return 0x%x", uint32(result))
	}
	return nil
}
