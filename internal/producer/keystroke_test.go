// internal/producer/keystroke_test.go
package producer

import (
	"testing"

	"github.com/user/tutorpipe/internal/editor"
)

func keystrokeFixture(scheme string, changes []editor.Change) editor.Keystroke {
	return editor.Keystroke{
		Document: editor.Document{Path: "/ws/main.go", Scheme: scheme},
		Changes:  changes,
	}
}

func TestKeystrokeProducerEmitsEdits(t *testing.T) {
	bus := editor.NewBus()
	exp := &recordingExporter{}

	p := NewKeystroke(testSource(), NewPathFilter("/ws/.data"), discard())
	p.AddExporter(exp)
	p.Listen(bus)

	changes := []editor.Change{
		{Text: "x", RangeOffset: 10, RangeLength: 0},
		{Text: "", RangeOffset: 20, RangeLength: 3},
	}
	bus.PublishKeystroke(keystrokeFixture("file", changes))
	bus.Wait()

	if exp.count() != 1 {
		t.Fatalf("expected 1 event, got %d", exp.count())
	}
	ev := exp.events[0]
	if ev.Data["documentPath"] != "/ws/main.go" {
		t.Errorf("documentPath not recorded: %+v", ev.Data)
	}
	got, ok := ev.Data["changes"].([]editor.Change)
	if !ok || len(got) != 2 {
		t.Fatalf("changes not recorded in order: %+v", ev.Data["changes"])
	}
	if got[0].RangeOffset != 10 || got[1].RangeLength != 3 {
		t.Errorf("change fields lost: %+v", got)
	}
}

func TestKeystrokeProducerIgnoresVirtualBuffers(t *testing.T) {
	bus := editor.NewBus()
	exp := &recordingExporter{}

	p := NewKeystroke(testSource(), NewPathFilter("/ws/.data"), discard())
	p.AddExporter(exp)
	p.Listen(bus)

	bus.PublishKeystroke(keystrokeFixture("untitled", []editor.Change{{Text: "x"}}))
	bus.Wait()

	if exp.count() != 0 {
		t.Errorf("expected virtual buffer edit to be ignored, got %d events", exp.count())
	}
}

func TestKeystrokeProducerSkipsEmptyChangeList(t *testing.T) {
	bus := editor.NewBus()
	exp := &recordingExporter{}

	p := NewKeystroke(testSource(), NewPathFilter("/ws/.data"), discard())
	p.AddExporter(exp)
	p.Listen(bus)

	bus.PublishKeystroke(keystrokeFixture("file", nil))
	bus.Wait()

	if exp.count() != 0 {
		t.Errorf("expected empty change list to be skipped, got %d events", exp.count())
	}
}
