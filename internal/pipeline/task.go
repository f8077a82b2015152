package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yourorg/transitload/internal/proj"
)

// exchangeURLFormat resolves a bare agency key to its archive on the public
// GTFS exchange.
const exchangeURLFormat = "http://www.gtfs-data-exchange.com/agency/%s/latest.zip"

// TaskSpec is one agency descriptor from configuration: a key plus a source
// (url or path), or a directory to expand into one task per archive.
type TaskSpec struct {
	Key    string `mapstructure:"key"`
	URL    string `mapstructure:"url"`
	Path   string `mapstructure:"path"`
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
	Proj   string `mapstructure:"proj"`
}

// Task is one unit of work for the queue: a single agency's archive.
type Task struct {
	AgencyKey string
	URL       string
	Path      string
	Proj      proj.Func
	ProjName  string
}

// Source names whichever source the task carries, for logs and errors.
func (t Task) Source() string {
	if t.URL != "" {
		return t.URL
	}
	return t.Path
}

// ExpandTasks resolves descriptors into concrete tasks: directory globs
// become one task per archive (key taken from the file name), a key without
// url or path falls back to the exchange URL, and duplicate archive paths
// are skipped. Descriptor problems surface as ValidationError before any
// task runs.
func ExpandTasks(specs []TaskSpec) ([]Task, error) {
	var flat []TaskSpec
	for _, spec := range specs {
		if spec.Dir == "" {
			flat = append(flat, spec)
			continue
		}
		format := spec.Format
		if format == "" {
			format = "*.zip"
		}
		matches, err := filepath.Glob(filepath.Join(spec.Dir, format))
		if err != nil {
			return nil, &ValidationError{Reason: "bad glob pattern " + format + ": " + err.Error()}
		}
		for _, m := range matches {
			name := filepath.Base(m)
			name = strings.TrimSuffix(name, filepath.Ext(name))
			flat = append(flat, TaskSpec{Key: name, Path: m, Proj: spec.Proj})
		}
	}

	seenPath := make(map[string]bool)
	var tasks []Task
	for _, spec := range flat {
		if spec.Key == "" && spec.URL == "" && spec.Path == "" {
			return nil, &ValidationError{Reason: "missing agency key and source"}
		}
		if spec.Key == "" {
			return nil, &ValidationError{Reason: "missing agency key for source " + spec.URL + spec.Path}
		}
		task := Task{AgencyKey: spec.Key, URL: spec.URL, Path: spec.Path}
		if task.URL == "" && task.Path == "" {
			task.URL = fmt.Sprintf(exchangeURLFormat, spec.Key)
		}
		if task.Path != "" {
			if seenPath[task.Path] {
				continue
			}
			seenPath[task.Path] = true
		}
		if spec.Proj != "" {
			fn, ok := proj.Lookup(spec.Proj)
			if !ok {
				return nil, &ValidationError{Key: spec.Key, Reason: "unknown projection " + spec.Proj}
			}
			task.Proj = fn
			task.ProjName = spec.Proj
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
