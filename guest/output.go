package guest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/photowall/photowall"
)

// Formatter formats results for CLI output.
type Formatter interface {
	FormatUpload(w io.Writer, tasks []UploadTask) error
	FormatGallery(w io.Writer, photos []photowall.Photo, owned map[string]bool) error
	FormatDelete(w io.Writer, key string) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatUpload(w io.Writer, tasks []UploadTask) error {
	for i := range tasks {
		t := &tasks[i]
		if t.State == TaskFailed {
			_, _ = fmt.Fprintf(w, "Failed: %s - %v\n", t.LocalPath, t.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", t.LocalPath, t.Key, formatSize(t.Size))
		}
	}
	return nil
}

func (f *HumanFormatter) FormatGallery(w io.Writer, photos []photowall.Photo, owned map[string]bool) error {
	if len(photos) == 0 {
		_, _ = fmt.Fprintln(w, "No photos yet")
		return nil
	}

	for i := range photos {
		p := &photos[i]
		marker := "  "
		if owned[p.Key] {
			marker = "* "
		}
		_, _ = fmt.Fprintf(w, "%s%s\n    %s\n", marker, p.Key, p.URL)
	}

	_, _ = fmt.Fprintf(w, "\n%d photo(s), * = uploaded from this device\n", len(photos))
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, key string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Deleted: %s\n", key)
	}
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs newline-delimited JSON documents.
type JSONFormatter struct{}

type jsonTask struct {
	ID        string `json:"id"`
	LocalPath string `json:"local_path"`
	Key       string `json:"key,omitempty"`
	Size      int64  `json:"size_bytes,omitempty"`
	Progress  int    `json:"progress"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
}

func (f *JSONFormatter) FormatUpload(w io.Writer, tasks []UploadTask) error {
	out := make([]jsonTask, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		jt := jsonTask{
			ID:        t.ID.String(),
			LocalPath: t.LocalPath,
			Key:       t.Key,
			Size:      t.Size,
			Progress:  t.Progress,
			State:     string(t.State),
		}
		if t.Err != nil {
			jt.Error = t.Err.Error()
		}
		out = append(out, jt)
	}
	return json.NewEncoder(w).Encode(out)
}

func (f *JSONFormatter) FormatGallery(w io.Writer, photos []photowall.Photo, owned map[string]bool) error {
	type jsonPhoto struct {
		Key   string `json:"key"`
		URL   string `json:"url"`
		Owned bool   `json:"owned"`
	}

	out := make([]jsonPhoto, 0, len(photos))
	for i := range photos {
		p := &photos[i]
		out = append(out, jsonPhoto{Key: p.Key, URL: p.URL, Owned: owned[p.Key]})
	}
	return json.NewEncoder(w).Encode(out)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, key string) error {
	return json.NewEncoder(w).Encode(map[string]string{"deleted": key})
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
