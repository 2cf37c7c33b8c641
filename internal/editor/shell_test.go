// internal/editor/shell_test.go
package editor

import (
	"context"
	"strings"
	"testing"
)

// drainExecution collects the occurrence's output and exit status on the
// caller's behalf, the way the execution producer does.
func drainExecution(bus *Bus) (output *string, exit *int) {
	output = new(string)
	exit = new(int)
	bus.OnExecution(func(ex Execution) {
		var sb strings.Builder
		for chunk := range ex.Output {
			sb.WriteString(chunk)
		}
		*output = sb.String()
		*exit = <-ex.Exit
	})
	return output, exit
}

func TestRunCommandStreamsOutput(t *testing.T) {
	bus := NewBus()
	output, exit := drainExecution(bus)

	code, err := RunCommand(context.Background(), bus, "echo hello")
	if err != nil {
		t.Fatal(err)
	}
	bus.Wait()

	if code != 0 {
		t.Errorf("exit code = %d", code)
	}
	if strings.TrimSpace(*output) != "hello" {
		t.Errorf("output = %q", *output)
	}
	if *exit != 0 {
		t.Errorf("published exit = %d", *exit)
	}
}

func TestRunCommandCapturesStderr(t *testing.T) {
	bus := NewBus()
	output, _ := drainExecution(bus)

	if _, err := RunCommand(context.Background(), bus, "echo err >&2"); err != nil {
		t.Fatal(err)
	}
	bus.Wait()

	if !strings.Contains(*output, "err") {
		t.Errorf("stderr not captured: %q", *output)
	}
}

func TestRunCommandCompletesWithoutSubscriber(t *testing.T) {
	bus := NewBus()

	// Enough output to overflow the pipe buffer if nothing consumes it.
	code, err := RunCommand(context.Background(), bus, "seq 1 20000")
	if err != nil {
		t.Fatal(err)
	}
	bus.Wait()

	if code != 0 {
		t.Errorf("exit code = %d", code)
	}
}

func TestRunCommandNonZeroExit(t *testing.T) {
	bus := NewBus()
	_, exit := drainExecution(bus)

	code, err := RunCommand(context.Background(), bus, "exit 3")
	if err != nil {
		t.Fatal(err)
	}
	bus.Wait()

	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if *exit != 3 {
		t.Errorf("published exit = %d, want 3", *exit)
	}
}
