// internal/editor/shell.go
package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// RunCommand executes a shell command and publishes it as an execution
// occurrence: combined output is streamed in chunks, and the exit status is
// delivered once the stream is drained. Output is also copied to stdout so
// the command behaves normally for the person running it.
//
// The execution producer drains the Output channel fully before emitting its
// event; with no subscriber the bus drains it instead.
func RunCommand(ctx context.Context, bus *Bus, command string) (int, error) {
	pr, pw := io.Pipe()

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.Stdin = os.Stdin

	out := make(chan string)
	exit := make(chan int, 1)

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return -1, fmt.Errorf("start command: %w", err)
	}

	bus.PublishExecution(Execution{
		Command: command,
		Started: time.Now(),
		Output:  out,
		Exit:    exit,
	})

	go func() {
		defer close(out)
		buf := make([]byte, 4096)
		for {
			n, err := pr.Read(buf)
			if n > 0 {
				chunk := string(buf[:n])
				os.Stdout.WriteString(chunk)
				out <- chunk
			}
			if err != nil {
				return
			}
		}
	}()

	err := cmd.Wait()
	pw.Close()

	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			exit <- -1
			return -1, fmt.Errorf("wait for command: %w", err)
		}
	}
	exit <- code

	return code, nil
}
