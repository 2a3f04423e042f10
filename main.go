package main

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/s7rc/pad-motion/internal/config"
	"github.com/s7rc/pad-motion/internal/console"
	"github.com/s7rc/pad-motion/internal/dsu"
	"github.com/s7rc/pad-motion/internal/gamepad"
	"github.com/s7rc/pad-motion/internal/pointer"
	"github.com/s7rc/pad-motion/internal/synth"
	"github.com/s7rc/pad-motion/internal/tray"
)

const (
	// frameInterval is the synthesis cadence.
	frameInterval = time.Millisecond
	// reloadInterval is how often the tuning file is re-read.
	reloadInterval = time.Second
)

func loadOptions() {
	pflag.String("listen", "127.0.0.1:26760", "UDP address to serve the DSU protocol on")
	pflag.String("config", "config.txt", "tuning file, re-read once per second")
	pflag.Int("slot", 0, "controller slot to publish (0-3)")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)
	viper.SetEnvPrefix("PAD_MOTION")
	viper.AutomaticEnv()
}

func main() {
	loadOptions()

	slot := viper.GetInt("slot")
	if slot < 0 || slot >= dsu.MaxSlots {
		log.Fatalf("slot %d out of range (0-%d)", slot, dsu.MaxSlots-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := console.Trap(func() {
		log.Println("shutting down...")
		cancel()
	})
	defer release()

	// The transport is startup-fatal: without the socket and registered
	// controller metadata there is nothing to publish to.
	server, err := dsu.NewServer(viper.GetString("listen"))
	if err != nil {
		log.Fatalf("failed to start DSU server: %v", err)
	}
	serverDone := server.Start(ctx)
	server.SetControllerInfo(dsu.ControllerInfo{
		Slot:       uint8(slot),
		SlotState:  dsu.SlotStateConnected,
		Model:      dsu.DeviceModelFullGyro,
		Connection: dsu.ConnectionTypeUSB,
		Battery:    dsu.BatteryStatusCharged,
	})
	log.Printf("DSU server listening on %s (slot %d)", server.Addr(), slot)

	store := config.NewStore()
	reloader := config.NewReloader(store, viper.GetString("config"), reloadInterval)
	reloader.LogCurrent()
	go reloader.Run(ctx)

	reader := gamepad.NewReader()
	go reader.Run(ctx)

	collector := pointer.NewCollector()
	if err := collector.Start(ctx); err != nil {
		log.Printf("pointer capture unavailable: %v", err)
	}

	if runtime.GOOS == "windows" {
		go tray.New(func() {
			log.Println("shutdown requested from tray")
			cancel()
		}).Run(tray.GetIcon())
	} else {
		log.Println("press Ctrl+C to exit")
	}

	runLoop(ctx, synth.New(collector, reader, store), server, uint8(slot), frameInterval)

	// Let the transport finish flushing before the process exits.
	<-serverDone
	log.Println("pad-motion stopped")
}
