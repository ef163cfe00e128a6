//go:build tinygo

package main

import (
	"time"

	"machine"
)

const (
	// Scheduler configuration
	TICK_PERIOD       = time.Millisecond       // Hardware tick period
	IDLE_SLEEP        = 100 * time.Microsecond // Main loop sleep when nothing is pending
	REPORT_EVERY      = 20                     // Very slow runs between climate reports
	FAN_ON_ABOVE_C    = 30                     // Fan on above this temperature (°C)
	FAN_OFF_BELOW_C   = 29                     // Fan off below this temperature (°C)
	DHT_START_LOW     = 18 * time.Millisecond  // DHT11 start signal length
	DHT_BIT_TIMEOUT   = 100 * time.Microsecond // Longest expected DHT11 level
	DHT_ONE_THRESHOLD = 40 * time.Microsecond  // High level longer than this is a 1 bit

	// Pins
	PIN_DHT11 = machine.D2
	PIN_SOUND = machine.D3
	PIN_FAN   = machine.D4 // Active low relay
	PIN_LED   = machine.LED

	// Serial configuration
	// Report line "1700000000123456,27.50,31.25,48.00,0,1\n" is ~40 bytes once per
	// REPORT_EVERY seconds, far below the UART capacity.
	UART_BAUD_RATE = 115200
)
