//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"time"

	"machine"

	"github.com/itohio/comfort/pkg/module"
	"github.com/itohio/comfort/pkg/report"
	"github.com/itohio/comfort/pkg/scheduler"
	"github.com/itohio/comfort/pkg/task"
	"github.com/itohio/comfort/pkg/timer"
)

func main() {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_FAN.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_SOUND.Configure(machine.PinConfig{Mode: machine.PinInput})

	machine.Serial.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	fan := activeLow{pin: PIN_FAN}
	alarm := module.NewSoundAlarm(PIN_SOUND)
	thermostat := module.NewThermostat(module.ThermostatSettings{
		ReportEvery: REPORT_EVERY,
		FanOnAbove:  FAN_ON_ABOVE_C,
		FanOffBelow: FAN_OFF_BELOW_C,
	}, dht11{pin: PIN_DHT11}, mcuThermometer{}, fan, alarm, report.NewWriter(machine.Serial))

	registry := task.NewRegistry()
	must(registry.Register("heartbeat", module.NewHeartbeat(PIN_LED), task.Fast, task.VerySlow))
	must(registry.Register("sound-alarm", alarm, task.Medium))
	must(registry.Register("thermostat", thermostat, task.PowerOn, task.VerySlow))

	sched, err := scheduler.New(scheduler.DefaultThresholds(), registry)
	must(err)
	clock := timer.NewClock(TICK_PERIOD, sched)

	sched.EnableSystemTasks()
	sched.TriggerPowerOnTask()

	// Main loop: catch up on elapsed ticks, then dispatch at most one tier.
	lastTick := time.Now()
	for {
		now := time.Now()
		for now.Sub(lastTick) >= TICK_PERIOD {
			clock.Tick()
			lastTick = lastTick.Add(TICK_PERIOD)
		}

		if !sched.RunOnce() {
			time.Sleep(IDLE_SLEEP)
		}
	}
}

func must(err error) {
	if err != nil {
		println("fatal:", err.Error())
		for {
			time.Sleep(time.Second)
		}
	}
}
