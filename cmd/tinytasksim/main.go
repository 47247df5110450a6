// Command tinytasksim drives the host-surface simulation of package
// tinytask: it boots a small fixed number of tasks against trampoline_sim.go,
// fires ticks, and reports round-robin statistics. It exists because the
// real target (an STM32F0 board) cannot run go test; this is the runner
// spec.md §8's end-to-end scenarios assume when it says "a host harness
// implements the ISR pending and the execute one instruction step".
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/user-none/tinytask"
)

var (
	taskCount  = flag.Int("tasks", 2, "number of built-in counter tasks to start")
	tickCount  = flag.Int("ticks", 20, "number of ticks to fire")
	stackBytes = flag.Int("stack", 256, "stack size in bytes per task, multiple of 8")
	scenario   = flag.String("scenario", "", "path to a JSON scenario file (overrides -tasks)")
	dumpPath   = flag.String("dump", "", "path to write a binary StackFrame dump after the run")
)

// scenarioFile is the JSON shape -scenario accepts: a named list of
// counter tasks, each with its own stack size. Entry functions are drawn
// from the small built-in library below (counterTask) rather than loaded
// from the file, since tinytask.EntryFunc must be a plain function value
// and JSON cannot describe code.
type scenarioFile struct {
	Ticks int `json:"ticks"`
	Tasks []struct {
		Name  string `json:"name"`
		Stack int    `json:"stack"`
	} `json:"tasks"`
}

func loadScenario(path string) (scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenarioFile{}, fmt.Errorf("reading scenario: %w", err)
	}
	var sc scenarioFile
	if err := json.Unmarshal(data, &sc); err != nil {
		return scenarioFile{}, fmt.Errorf("parsing scenario: %w", err)
	}
	return sc, nil
}

// counterEntry is the built-in task kind: increments its own counter
// once per dispatch and yields, the same shape as the "each increment
// their own counter" task in spec.md §8 scenario 3.
func counterEntry(counter *int) tinytask.EntryFunc {
	return func() {
		for {
			*counter++
			tinytask.Yield()
		}
	}
}

func main() {
	flag.Parse()

	log := logrus.StandardLogger()
	tinytask.SetFaultLogger(log)
	tinytask.SetByteSink(func(b []byte) {
		log.WithField("bytes", fmt.Sprintf("% x", b)).Debug("tinytask: diagnostic")
	})

	names := make([]string, 0, *taskCount)
	stackSizes := make([]int, 0, *taskCount)
	ticks := *tickCount

	if *scenario != "" {
		sc, err := loadScenario(*scenario)
		if err != nil {
			log.WithError(err).Fatal("tinytasksim: could not load scenario")
		}
		if sc.Ticks > 0 {
			ticks = sc.Ticks
		}
		for _, tk := range sc.Tasks {
			names = append(names, tk.Name)
			size := tk.Stack
			if size == 0 {
				size = *stackBytes
			}
			stackSizes = append(stackSizes, size)
		}
	} else {
		for i := 0; i < *taskCount; i++ {
			names = append(names, fmt.Sprintf("task%d", i))
			stackSizes = append(stackSizes, *stackBytes)
		}
	}

	tinytask.Init(len(names))

	counters := make([]int, len(names))
	tasks := make([]*tinytask.Task, len(names))
	for i, name := range names {
		stack, err := tinytask.StackFromSlice(make([]byte, stackSizes[i]))
		if err != nil {
			log.WithError(err).WithField("task", name).Fatal("tinytasksim: stack allocation failed")
		}
		tasks[i] = tinytask.NewTask(counterEntry(&counters[i]), stack)
		if err := tasks[i].Start(); err != nil {
			log.WithError(err).WithField("task", name).Fatal("tinytasksim: start failed")
		}
	}

	for i := 0; i < ticks; i++ {
		tinytask.Tick()
	}

	for i, name := range names {
		log.WithFields(logrus.Fields{"task": name, "count": counters[i]}).Info("tinytasksim: result")
	}

	if *dumpPath != "" {
		if err := dumpFrames(*dumpPath, tasks); err != nil {
			log.WithError(err).Fatal("tinytasksim: dump failed")
		}
	}
}

// dumpFrames writes one StackFrame.Serialize record per still-running
// task, back to back, mirroring the teacher's CPU.Serialize debug-dump
// idiom (serialize.go) applied to the smaller per-task frame instead of
// whole-CPU state.
func dumpFrames(path string, tasks []*tinytask.Task) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, t := range tasks {
		frame := t.Frame()
		if frame == nil {
			continue
		}
		buf := make([]byte, frame.SerializeSize())
		if err := frame.Serialize(buf); err != nil {
			return err
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
