package recorder

import (
	"path/filepath"
	"testing"

	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {}

func TestRecorderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "commands.db")
	rec, err := NewRecorder(dbPath, nopLogger{})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	defer rec.Close()

	commands := []struct {
		cmd    teleop.VelocityCommand
		source string
		label  string
	}{
		{teleop.VelocityCommand{LinVelX: 0.5}, "manual", "forward"},
		{teleop.VelocityCommand{LinVelY: -0.5}, "manual", "right"},
		{teleop.VelocityCommand{LinVelX: 1.0}, "scripted", "moving"},
	}
	for _, c := range commands {
		if err := rec.Publish(c.cmd, c.source, c.label); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	entries, err := rec.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	// Newest first.
	if entries[0].Source != "scripted" || entries[0].Label != "moving" {
		t.Errorf("Expected newest entry first, got %+v", entries[0])
	}
	if entries[0].Command.LinVelX != 1.0 {
		t.Errorf("Expected lin_vel_x 1.0, got %v", entries[0].Command.LinVelX)
	}
	if entries[1].Command.LinVelY != -0.5 {
		t.Errorf("Expected lin_vel_y -0.5, got %v", entries[1].Command.LinVelY)
	}
}

func TestRecentOnEmptyLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "commands.db")
	rec, err := NewRecorder(dbPath, nopLogger{})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	defer rec.Close()

	entries, err := rec.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}
