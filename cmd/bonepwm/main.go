package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bonepwm/internal/config"
	"bonepwm/internal/pwm"
)

func main() {
	var configPath string
	var listSlots bool
	flag.StringVar(&configPath, "config", "./bonepwm.yaml", "Path to YAML config")
	flag.BoolVar(&listSlots, "list", false, "Print the capemgr slot table and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	mgr := pwm.New(cfg.Sysfs.PWM())
	if err := mgr.Initialize(); err != nil {
		log.Fatalf("pwm init failed: %v", err)
	}
	capemgrDir, ocpDir := mgr.Paths()
	log.Printf("bonepwm capemgr=%s ocp=%s", capemgrDir, ocpDir)

	if listSlots {
		if err := printSlots(os.Stdout, mgr); err != nil {
			log.Fatalf("list slots failed: %v", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, mgr, cfg.Pins); err != nil {
		log.Fatalf("%v", err)
	}
}

// run exports the configured pins, holds them until ctx is done, then
// releases every pin.
func run(ctx context.Context, mgr *pwm.Manager, pins []config.PinConfig) error {
	started := startPins(mgr, pins)
	defer func() {
		if err := mgr.CleanupAll(); err != nil {
			log.Printf("pwm cleanup: %v", err)
		}
		log.Printf("bonepwm stopped")
	}()

	if len(pins) > 0 && started == 0 {
		return fmt.Errorf("no pwm pin could be started")
	}
	log.Printf("bonepwm running pins=%d", started)
	<-ctx.Done()
	return nil
}

// startPins enables each pin and applies its frequency and duty. A pin that
// fails is disabled again and skipped; the rest keep going.
func startPins(mgr *pwm.Manager, pins []config.PinConfig) int {
	started := 0
	for _, p := range pins {
		if err := startPin(mgr, p); err != nil {
			log.Printf("pwm pin %s init failed: %v", p.Key, err)
			_ = mgr.Disable(p.Key)
			continue
		}
		log.Printf("pwm pin %s frequency_hz=%g duty_percent=%g", p.Key, p.FrequencyHz, p.DutyPercent)
		started++
	}
	return started
}

func startPin(mgr *pwm.Manager, p config.PinConfig) error {
	if err := mgr.Enable(p.Key); err != nil {
		return err
	}
	if err := mgr.SetFrequency(p.Key, p.FrequencyHz); err != nil {
		return err
	}
	return mgr.SetDutyCycle(p.Key, p.DutyPercent)
}
