package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/guard"
)

func main() {
	var (
		ops         = flag.Int("ops", 1000, "Number of workload iterations")
		size        = flag.Int("size", 256, "Allocation size in bytes")
		policyStr   = flag.String("policy", "none", "Policy: none, forbid, or a deny list (allocs,reallocs,deallocs)")
		budget      = flag.Int("budget", 0, "Byte budget for the underlying allocator (0 = unlimited)")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		guard.SetLogger(logger)
	}

	installAllocator(*budget)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*size); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*ops, *size, *policyStr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func installAllocator(budget int) {
	var upstream allocguard.Allocator = allocguard.NewGoAllocator()
	if budget > 0 {
		upstream = allocguard.NewLimitAllocator(budget, upstream)
	}
	allocguard.Install(upstream)
}

func run(ops, size int, policyStr string) (err error) {
	policy, err := parsePolicy(policyStr)
	if err != nil {
		return err
	}

	// Violations panic by design; report them as errors here.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("policy violated: %v", r)
		}
	}()

	delta := guard.Do(policy, func() {
		workload(ops, size)
	})

	total := allocguard.Current()
	fmt.Printf("Workload: %d iterations of %d bytes\n\n", ops, size)
	fmt.Printf("Measured delta:\n")
	fmt.Printf("  allocations:   %d\n", delta.Allocs)
	fmt.Printf("  reallocations: %d\n", delta.Reallocs)
	fmt.Printf("  deallocations: %d\n", delta.Deallocs)
	fmt.Printf("\nProcess totals: allocs=%d reallocs=%d deallocs=%d\n",
		total.Allocs, total.Reallocs, total.Deallocs)
	return nil
}

// workload exercises all three channels through the default allocator.
// Allocation failures are skipped silently; a capped budget is part of the
// demo, not an error.
func workload(ops, size int) {
	a := allocguard.Default()
	for i := 0; i < ops; i++ {
		buf, err := a.Allocate(size)
		if err != nil {
			continue
		}
		if i%3 == 0 {
			if grown, err := a.Reallocate(size*2, buf); err == nil {
				buf = grown
			}
		}
		if i%2 == 0 {
			a.Free(buf)
		}
	}
}

func parsePolicy(s string) (guard.Policy, error) {
	switch s {
	case "", "none", "allow":
		return guard.Allow(), nil
	case "forbid", "all":
		return guard.Forbid(), nil
	}

	var ch guard.Channel
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "allocs":
			ch |= guard.Allocs
		case "reallocs":
			ch |= guard.Reallocs
		case "deallocs":
			ch |= guard.Deallocs
		default:
			return guard.Policy{}, fmt.Errorf("unknown channel %q (want allocs, reallocs, or deallocs)", name)
		}
	}
	return guard.Deny(ch), nil
}
