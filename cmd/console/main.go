package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"minijavac/pkg/compiler"
	"minijavac/pkg/cpu"
	"minijavac/pkg/logger"
	"minijavac/pkg/utils"
	"minijavac/pkg/vfs"
)

// startDiskSyncer flushes the artifact store to dir every interval while
// stop is open.
func startDiskSyncer(store *vfs.Store, dir string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if store.Dirty() {
				if err := store.PersistTo(dir); err != nil {
					slog.Warn("artifact sync failed", "dir", dir, "error", err)
				}
			}
		case <-stop:
			return
		}
	}
}

// build compiles and runs the file once, storing the listing and the
// program output.
func build(path string, store *vfs.Store, showAsm bool, maxSteps int) {
	source, err := os.ReadFile(path)
	if err != nil {
		log.Printf("read failed: %v", err)
		return
	}

	res, err := compiler.Compile(string(source), compiler.Options{Logger: slog.Default()})
	if err != nil {
		fmt.Printf("Compilation failed: %v\n", err)
		return
	}
	if showAsm {
		fmt.Print("Generated Assembly:\n", res.Assembly, "\n")
	}
	_ = store.WriteString(utils.ArtifactName(path, "asm"), res.Assembly+"\n")

	vm := cpu.NewCPU(cpu.Config{MaxSteps: maxSteps})
	if err := vm.Load(res.Program); err != nil {
		log.Printf("load failed: %v", err)
		return
	}
	if err := vm.Run(); err != nil {
		fmt.Printf("Run failed after %d steps: %v\n", vm.Steps, err)
	}

	var out []byte
	for _, v := range vm.Printed {
		out = fmt.Appendf(out, "%d\n", v)
	}
	_ = store.Write(utils.ArtifactName(path, "out"), out)
	fmt.Printf("-- exit %d after %d steps\n", vm.ExitCode, vm.Steps)
}

func main() {
	showAsm := flag.Bool("show-asm", false, "print the generated assembly on every build")
	outDir := flag.String("out", "output", "directory the artifacts are synced to")
	poll := flag.Duration("poll", 500*time.Millisecond, "how often the source file is checked for changes")
	maxSteps := flag.Int("max-steps", cpu.DefaultMaxSteps, "instruction limit per run")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn or error")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] <file.java>")
		os.Exit(2)
	}
	if _, err := logger.FromFlags(*logLevel, "text"); err != nil {
		log.Fatal(err)
	}

	fullPath, baseDir, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Bad source path: %v", err)
	}
	fmt.Println("Watching source file:", fullPath)
	fmt.Println("Base directory:", baseDir)

	store := vfs.NewStore()
	stopSyncer := make(chan struct{})
	go startDiskSyncer(store, *outDir, 3*time.Second, stopSyncer)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	ticker := time.NewTicker(*poll)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ticker.C:
			info, err := os.Stat(fullPath)
			if err != nil {
				log.Printf("stat failed: %v", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			fmt.Printf("== %s changed, rebuilding\n", utils.BaseName(fullPath))
			build(fullPath, store, *showAsm, *maxSteps)

		case <-interrupt:
			close(stopSyncer)
			if store.Dirty() {
				_ = store.PersistTo(*outDir)
			}
			return
		}
	}
}
