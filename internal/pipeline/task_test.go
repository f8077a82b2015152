package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandTasksBareKeyFallsBackToExchange(t *testing.T) {
	tasks, err := ExpandTasks([]TaskSpec{{Key: "caltrain"}})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks; want 1", len(tasks))
	}
	want := "http://www.gtfs-data-exchange.com/agency/caltrain/latest.zip"
	if tasks[0].URL != want {
		t.Errorf("url=%s; want %s", tasks[0].URL, want)
	}
}

func TestExpandTasksKeepsExplicitURL(t *testing.T) {
	tasks, err := ExpandTasks([]TaskSpec{{Key: "metro", URL: "https://metro.example/gtfs.zip"}})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if tasks[0].URL != "https://metro.example/gtfs.zip" {
		t.Errorf("url=%s", tasks[0].URL)
	}
}

func TestExpandTasksMissingKey(t *testing.T) {
	_, err := ExpandTasks([]TaskSpec{{URL: "https://metro.example/gtfs.zip"}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err=%v; want *ValidationError", err)
	}
}

func TestExpandTasksDirectoryGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha.zip", "bravo.zip", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tasks, err := ExpandTasks([]TaskSpec{{Dir: dir}})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks; want 2 (only *.zip)", len(tasks))
	}
	keys := map[string]bool{}
	for _, task := range tasks {
		keys[task.AgencyKey] = true
		if task.Path == "" {
			t.Errorf("task %s has no archive path", task.AgencyKey)
		}
	}
	if !keys["alpha"] || !keys["bravo"] {
		t.Errorf("keys=%v; want alpha and bravo", keys)
	}
}

func TestExpandTasksDeduplicatesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alpha.zip")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	tasks, err := ExpandTasks([]TaskSpec{
		{Key: "alpha", Path: path},
		{Dir: dir},
	})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks; want 1 after path dedupe", len(tasks))
	}
}

func TestExpandTasksUnknownProjection(t *testing.T) {
	_, err := ExpandTasks([]TaskSpec{{Key: "metro", Proj: "lambert-1972"}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err=%v; want *ValidationError", err)
	}
	if ve.Key != "metro" {
		t.Errorf("validation error key=%s", ve.Key)
	}
}

func TestExpandTasksKnownProjection(t *testing.T) {
	tasks, err := ExpandTasks([]TaskSpec{{Key: "metro", Proj: "wgs84"}})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if tasks[0].Proj == nil || tasks[0].ProjName != "wgs84" {
		t.Errorf("projection not resolved: %+v", tasks[0])
	}
}
