package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/tutorpipe/internal/chat"
	"github.com/user/tutorpipe/internal/exporter"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect captured telemetry sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured sessions under the storage root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		paths, err := sessionFiles(cfg.StorageRoot())
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println("No captured sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IDENTITY\tMACHINE\tSESSION\tEVENTS")
		for _, path := range paths {
			events, err := exporter.ReadLog(path)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			rel, err := filepath.Rel(cfg.StorageRoot(), path)
			if err != nil {
				return err
			}
			identity, machine, session := splitSessionPath(rel)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", identity, machine, session, len(events))
		}
		return w.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <telemetry-file>",
	Short: "Summarize one telemetry file, with per-event token counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		events, err := exporter.ReadLog(args[0])
		if err != nil {
			return err
		}

		counter, err := chat.NewTokenCounter(cfg.LLM.Model)
		if err != nil {
			return fmt.Errorf("token counter: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tTYPE\tTOKENS")
		total := 0
		for _, ev := range events {
			tokens := 0
			if msg, ok := ev.Data["message"].(string); ok {
				tokens = counter.Count(msg)
			} else if text, ok := ev.Data["documentText"].(string); ok {
				tokens = counter.Count(text)
			} else if result, ok := ev.Data["result"].(string); ok {
				tokens = counter.Count(result)
			}
			total += tokens
			fmt.Fprintf(w, "%s\t%s\t%d\n", ev.Timestamp, ev.Type, tokens)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("%d events, %d text tokens\n", len(events), total)
		return nil
	},
}

// sessionFiles returns every telemetry file under the storage root.
func sessionFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() && d.Name() == "telemetry.json" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// splitSessionPath breaks <identity>/<machine>/<session>/telemetry.json into
// its identifying components.
func splitSessionPath(rel string) (identity, machine, session string) {
	dir := filepath.Dir(rel)
	session = filepath.Base(dir)
	dir = filepath.Dir(dir)
	machine = filepath.Base(dir)
	identity = filepath.Dir(dir)
	return identity, machine, session
}
