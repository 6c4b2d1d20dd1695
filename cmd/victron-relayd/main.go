// Command victron-relayd drives the Victron ON/CH relay links. It serves
// the serial console protocol, an HTTP status page and API, and an hourly
// price scheduler for the charger link, publishing state changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/victron-relay/internal/console"
	"github.com/sweeney/victron-relay/internal/links"
	"github.com/sweeney/victron-relay/internal/mqtt"
	"github.com/sweeney/victron-relay/internal/relay"
	"github.com/sweeney/victron-relay/internal/schedule"
	"github.com/sweeney/victron-relay/internal/serialport"
	"github.com/sweeney/victron-relay/internal/status"
	"github.com/sweeney/victron-relay/internal/web"
)

func main() {
	serialPort := flag.String("serial-port", "auto", `serial console port ("auto" detects, "off" disables)`)
	baud := flag.Int("baud", serialport.DefaultBaud, "serial console baud rate")
	gpiochip := flag.String("gpiochip", "gpiochip0", "GPIO character device name")
	pinON := flag.Int("pin-on", relay.DefaultPinON, "BCM pin number for the inverter (ON) relay")
	pinCH := flag.Int("pin-ch", relay.DefaultPinCH, "BCM pin number for the charger (CH) relay")
	activeLow := flag.Bool("active-low", true, "relay board energizes on low level")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", `MQTT broker address ("off" disables)`)
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	threshold := flag.Float64("threshold", 0.20, "charge-off price threshold in EUR/kWh")
	area := flag.String("area", schedule.DefaultArea, "Nord Pool bidding area")
	tzName := flag.String("tz", "Local", "time zone for hourly scheduling")
	schedOn := flag.Bool("schedule", true, "enable the price scheduler")
	printState := flag.Bool("print-state", false, "Print current link state and exit")

	flag.Parse()

	if err := run(*serialPort, *baud, *gpiochip, *pinON, *pinCH, *activeLow,
		*broker, *heartbeat, *httpAddr, *threshold, *area, *tzName, *schedOn, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(serialName string, baud int, gpiochip string, pinON, pinCH int, activeLow bool,
	broker string, heartbeat time.Duration, httpAddr string, threshold float64,
	area, tzName string, schedOn, printState bool) error {

	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", tzName, err)
	}

	// Claiming the GPIO lines drives both relays to the enabled
	// (de-energized) fail-safe state.
	driver, err := relay.NewRealDriver(gpiochip, pinON, pinCH, activeLow)
	if err != nil {
		return fmt.Errorf("init relay driver: %w", err)
	}
	defer driver.Close()

	var (
		publisher mqtt.Publisher
		tracker   *status.Tracker
	)
	var store *links.Store
	store = links.NewStore(driver, func(ev links.Event) {
		log.Printf("event: %s (ON=%s CH=%s)", ev.Type, ev.ONState, ev.CHState)
		if tracker != nil {
			tracker.SetLinks(store.Snapshot(), store.Counts())
		}
		if publisher != nil {
			if err := publisher.Publish(ev); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
	})
	if err := store.ApplyAll(); err != nil {
		return fmt.Errorf("apply initial relay state: %w", err)
	}

	// Print state mode
	if printState {
		fmt.Println(console.SnapshotLine(store.Snapshot()))
		return nil
	}

	// Open serial console. An explicitly named port must open; auto
	// detection failing just means we run without a console.
	var port *serialport.Port
	switch serialName {
	case "off":
	case "auto":
		port, err = serialport.Detect(baud)
		if err != nil {
			log.Printf("serialport: %v, console disabled", err)
		}
	default:
		port, err = serialport.Open(serialName, baud)
		if err != nil {
			return fmt.Errorf("open serial port: %w", err)
		}
	}
	portName := "off"
	if port != nil {
		portName = port.Name()
		defer port.Close()
		log.Printf("serial console on %s at %d baud", portName, baud)
	}

	// Initialize MQTT
	var mqttStatus mqtt.ConnectionStatus
	if broker != "off" {
		real := mqtt.NewRealPublisher(broker)
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	tracker = status.NewTracker(time.Now(), status.Config{
		SerialPort:      portName,
		Baud:            baud,
		Broker:          broker,
		HTTPAddr:        httpAddr,
		HeartbeatMs:     heartbeat.Milliseconds(),
		ThresholdEURkWh: threshold,
		Area:            area,
		ActiveLow:       activeLow,
		PinON:           pinON,
		PinCH:           pinCH,
	})
	tracker.SetLinks(store.Snapshot(), store.Counts())

	publishSystem(publisher, mqttStatus, tracker, "STARTUP", "", true, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := schedule.New(&schedule.EleringFetcher{Area: area, TZ: tz}, store, tracker, threshold, tz)
	if schedOn {
		go sched.Run(ctx)
	} else {
		log.Printf("price scheduler disabled")
	}

	// Start HTTP server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, store, sched)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http server listening on %s", httpAddr)
	}

	// Start serial console
	consoleErr := make(chan error, 1)
	if port != nil {
		it := console.NewInterpreter(store)
		go func() {
			consoleErr <- it.Run(port, port)
		}()
	}

	log.Printf("started: serial=%s broker=%s http=%s threshold=%.2f area=%s heartbeat=%v",
		portName, broker, httpAddr, threshold, area, heartbeat)

	var hbTick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		hbTick = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(store, publisher, mqttStatus, tracker, time.Now, hbTick, consoleErr, sigCh)
}

func runLoop(store *links.Store, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, hbTick <-chan time.Time, consoleErr <-chan error, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			publishSystem(publisher, mqttStatus, tracker, "SHUTDOWN", signalName(s), true, now())
			return nil

		case err := <-consoleErr:
			if err != nil {
				return fmt.Errorf("console: %w", err)
			}
			// Port closed cleanly; keep serving HTTP and the scheduler.
			log.Printf("console closed")
			consoleErr = nil

		case <-hbTick:
			if tracker != nil {
				tracker.SetLinks(store.Snapshot(), store.Counts())
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v on=%s ch=%s", snap.Uptime().Truncate(time.Second), snap.ON, snap.CH)
			}
			publishSystem(publisher, mqttStatus, tracker, "HEARTBEAT", "", false, now())
		}
	}
}

// publishSystem publishes a system lifecycle event with a full status
// snapshot attached. No-op without a publisher.
func publishSystem(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, event, reason string, retained bool, ts time.Time) {
	if publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{
		Timestamp: ts,
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	if err := publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
