package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/lukaszgryglicki/flames/internal/flames"
)

func main() {
	flames.Debug = os.Getenv("DEBUG") != ""
	flames.GIF = os.Getenv("GIF") != ""
	flames.RAW = os.Getenv("RAW") != ""
	flames.TIFF = os.Getenv("TIFF") != ""
	flames.Accumulation = os.Getenv("ACCUMULATION")
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fmt.Printf("Error: WORKERS: %v\n", err)
			os.Exit(1)
		}
		flames.Workers = n
	}
	if v := os.Getenv("SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			fmt.Printf("Error: SEED: %v\n", err)
			os.Exit(1)
		}
		flames.Seed = n
	}
	if v := os.Getenv("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			fmt.Printf("Error: TIMEOUT: %v\n", err)
			os.Exit(1)
		}
		flames.Timeout = d
	}
	level := slog.LevelInfo
	if flames.Debug {
		level = slog.LevelDebug
	}
	flames.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	profile := os.Getenv("PROFILE") != ""
	if profile {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg := "scenes/config.json"
	if len(os.Args) > 1 {
		cfg = os.Args[1]
	}
	if err := flames.Run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
