package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestStepInstant(t *testing.T) {
	if _, set, err := (Step{}).instant(); set || err != nil {
		t.Fatalf("empty step: set=%t err=%v", set, err)
	}
	if at, set, err := (Step{At: Unsynced}).instant(); !set || !at.IsZero() || err != nil {
		t.Fatalf("unsynced step: %v %t %v", at, set, err)
	}
	at, _, err := (Step{At: "2025-03-07T08:00:00-04:00"}).instant()
	if err != nil || at.Hour() != 12 {
		t.Fatalf("offset step: %v %v", at, err)
	}
	if (Step{}).ticks() != 1 || (Step{Ticks: 4}).ticks() != 4 {
		t.Fatal("ticks default")
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte(":"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected unmarshal error")
	}
	badTime := filepath.Join(dir, "time.yaml")
	if err := os.WriteFile(badTime, []byte("name: x\nsteps:\n  - at: noon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(badTime); err == nil {
		t.Fatal("expected time error")
	}
}
