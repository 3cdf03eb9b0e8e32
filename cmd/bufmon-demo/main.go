// cmd/bufmon-demo/main.go
//
// Host demo: runs the buffer-voltage monitor service against the simulated
// converter pair. The console drives the "hardware" side (input voltages,
// bus faults) while the service loop reports readings and alert events.
//
//	usage: bufmon-demo [config.yaml]
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/shlex"

	"bufmon-go/drivers/adc081"
	"bufmon-go/drivers/adcsim"
	"bufmon-go/services/monitor"
)

var errBusInjected = errors.New("bufmon-demo: injected bus fault")

func bufAddr(name string) (uint8, bool) {
	switch name {
	case "a", "A":
		return adc081.AddressBufA, true
	case "b", "B":
		return adc081.AddressBufB, true
	}
	return 0, false
}

func printEvents(ctx context.Context, svc *monitor.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-svc.Readings():
			fmt.Printf("[reading] buf=%02b %d mV\n", r.Buffer, r.Millivolts)
		case a := <-svc.Alerts():
			fmt.Printf("[ALERT] mask=%02b\n", a.Mask)
		case f := <-svc.Faults():
			fmt.Printf("[fault] op=%s code=%s err=%v\n", f.Op, f.Code, f.Err)
		}
	}
}

func main() {
	cfg := monitor.DefaultConfig()
	if len(os.Args) > 1 {
		var err error
		cfg, err = monitor.Load(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	sim := adcsim.New()
	mon := adc081.New(adc081.Config{Bus: sim, AlertPin: sim.Pin()})
	if err := mon.Configure(); err != nil {
		fmt.Fprintln(os.Stderr, "probe failed:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := monitor.New(mon, cfg)
	go func() {
		if err := svc.Run(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "service stopped:", err)
		}
	}()
	go printEvents(ctx, svc)

	fmt.Println("bufmon-demo: 'help' lists commands")
	in := bufio.NewScanner(os.Stdin)
	for fmt.Print("> "); in.Scan(); fmt.Print("> ") {
		args, err := shlex.Split(in.Text())
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("v <a|b> <mv>    set simulated input voltage")
			fmt.Println("pin             show shared alert line state")
			fmt.Println("reg <a|b> <n>   dump raw register 0..7")
			fmt.Println("fail <on|off>   inject/clear bus faults")
			fmt.Println("quit            exit")

		case "v":
			if len(args) != 3 {
				fmt.Println("usage: v <a|b> <mv>")
				continue
			}
			addr, ok := bufAddr(args[1])
			mv, err := strconv.ParseUint(args[2], 10, 16)
			if !ok || err != nil {
				fmt.Println("usage: v <a|b> <mv>")
				continue
			}
			sim.SetMillivolts(addr, uint16(mv))

		case "pin":
			if mon.Alerted() {
				fmt.Println("alert line: asserted (low)")
			} else {
				fmt.Println("alert line: idle (high)")
			}

		case "reg":
			if len(args) != 3 {
				fmt.Println("usage: reg <a|b> <0..7>")
				continue
			}
			addr, ok := bufAddr(args[1])
			reg, err := strconv.ParseUint(args[2], 10, 3)
			if !ok || err != nil {
				fmt.Println("usage: reg <a|b> <0..7>")
				continue
			}
			fmt.Printf("reg[%d] = %#04x\n", reg, sim.Reg(addr, uint8(reg)))

		case "fail":
			if len(args) == 2 && args[1] == "on" {
				sim.Fail(errBusInjected)
			} else {
				sim.Fail(nil)
			}

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command; try 'help'")
		}
	}
}
