package cascettecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wowemulation-dev/cascette-go/httprange"
)

// DownloadProgress is the sidecar state persisted alongside an in-progress
// download, matching the on-wire JSON schema exactly (field names and all)
// so existing sidecar files remain loadable across versions.
type DownloadProgress struct {
	TotalSize       *uint64 `json:"total_size"`
	BytesDownloaded uint64  `json:"bytes_downloaded"`
	FileHash        string  `json:"file_hash"`
	CDNHost         string  `json:"cdn_host"`
	CDNPath         string  `json:"cdn_path"`
	TargetFile      string  `json:"target_file"`
	ProgressFile    string  `json:"progress_file"`
	IsComplete      bool    `json:"is_complete"`
	LastUpdated     uint64  `json:"last_updated"`
}

// progressFilePath derives a target's sidecar path by appending ".download".
func progressFilePath(target string) string {
	return target + ".download"
}

// NewDownloadProgress starts tracking a fresh download to targetFile.
func NewDownloadProgress(fileHash, cdnHost, cdnPath, targetFile string) *DownloadProgress {
	return &DownloadProgress{
		FileHash:     fileHash,
		CDNHost:      cdnHost,
		CDNPath:      cdnPath,
		TargetFile:   targetFile,
		ProgressFile: progressFilePath(targetFile),
		LastUpdated:  uint64(time.Now().Unix()),
	}
}

// LoadDownloadProgress reads a sidecar file from disk.
func LoadDownloadProgress(progressFile string) (*DownloadProgress, error) {
	data, err := os.ReadFile(progressFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotResumable
		}
		return nil, err
	}
	var p DownloadProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cascettecache: parse progress file: %w", err)
	}
	return &p, nil
}

// Save writes p to its ProgressFile, stamping LastUpdated.
func (p *DownloadProgress) Save() error {
	p.LastUpdated = uint64(time.Now().Unix())
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.ProgressFile, data, 0o644)
}

// VerifyExistingFile reports whether TargetFile's on-disk size is consistent
// with resuming: it is at least BytesDownloaded and, when TotalSize is
// known, no more than TotalSize.
func (p *DownloadProgress) VerifyExistingFile() bool {
	info, err := os.Stat(p.TargetFile)
	if err != nil {
		return false
	}
	size := uint64(info.Size())
	if size < p.BytesDownloaded {
		return false
	}
	return p.TotalSize == nil || size <= *p.TotalSize
}

// CompletionPercentage returns the download's progress, or false if
// TotalSize is unknown.
func (p *DownloadProgress) CompletionPercentage() (float64, bool) {
	if p.TotalSize == nil {
		return 0, false
	}
	if *p.TotalSize == 0 {
		return 100, true
	}
	return float64(p.BytesDownloaded) / float64(*p.TotalSize) * 100, true
}

// Resumable drives a resumable download of one file over an httprange.Client,
// persisting DownloadProgress to its sidecar every saveInterval bytes and on
// completion.
type Resumable struct {
	client       httprange.Client
	progress     *DownloadProgress
	saveInterval uint64
}

// DefaultSaveInterval matches the 1 MiB progress-flush cadence.
const DefaultSaveInterval = 1024 * 1024

// NewResumable creates a Resumable for progress over client.
func NewResumable(client httprange.Client, progress *DownloadProgress) *Resumable {
	return &Resumable{client: client, progress: progress, saveInterval: DefaultSaveInterval}
}

// Progress returns the current download progress.
func (r *Resumable) Progress() *DownloadProgress { return r.progress }

// Start runs (or resumes) the download to completion, streaming the
// response body to TargetFile in saveInterval-sized writes so progress is
// checkpointed periodically rather than only at the end.
func (r *Resumable) Start(ctx context.Context, url string) error {
	canResume := r.progress.BytesDownloaded > 0 && r.progress.VerifyExistingFile()
	if !canResume {
		r.progress.BytesDownloaded = 0
	}
	if err := r.progress.Save(); err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if !canResume {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(r.progress.TargetFile, flags, 0o644)
	if err != nil {
		return fmt.Errorf("cascettecache: open target file: %w", err)
	}
	defer f.Close()

	if canResume {
		if _, err := f.Seek(int64(r.progress.BytesDownloaded), 0); err != nil {
			return fmt.Errorf("cascettecache: seek target file: %w", err)
		}
	}

	contentLength, err := r.client.GetContentLength(ctx, url)
	if err != nil {
		return fmt.Errorf("cascettecache: get content length: %w", err)
	}
	if r.progress.TotalSize == nil {
		total := uint64(contentLength)
		r.progress.TotalSize = &total
	}

	var sinceLastSave uint64
	start := int64(r.progress.BytesDownloaded)
	for start < contentLength {
		end := start + int64(r.saveInterval) - 1
		if end >= contentLength {
			end = contentLength - 1
		}
		chunk, err := r.client.GetRange(ctx, url, &httprange.ByteRange{Start: start, End: end})
		if err != nil {
			return fmt.Errorf("cascettecache: fetch range: %w", err)
		}
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("cascettecache: write target file: %w", err)
		}

		n := uint64(len(chunk))
		r.progress.BytesDownloaded += n
		sinceLastSave += n
		start += int64(n)

		if sinceLastSave >= r.saveInterval {
			if err := f.Sync(); err != nil {
				return err
			}
			if err := r.progress.Save(); err != nil {
				return err
			}
			sinceLastSave = 0
		}
	}

	if err := f.Sync(); err != nil {
		return err
	}
	r.progress.IsComplete = true
	return r.progress.Save()
}

// Cancel removes the sidecar progress file without touching the partial
// target file.
func (r *Resumable) Cancel() error {
	err := os.Remove(r.progress.ProgressFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CleanupCompleted removes the sidecar file once the download has finished.
func (r *Resumable) CleanupCompleted() error {
	if !r.progress.IsComplete {
		return nil
	}
	return r.Cancel()
}

// FindResumableDownloads scans dir for incomplete *.download sidecars.
func FindResumableDownloads(dir string) ([]*DownloadProgress, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var downloads []*DownloadProgress
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".download") {
			continue
		}
		p, err := LoadDownloadProgress(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if !p.IsComplete {
			downloads = append(downloads, p)
		}
	}
	return downloads, nil
}

// HousekeepProgressFiles removes completed *.download sidecars older than
// maxAge, based on their recorded LastUpdated timestamp.
func HousekeepProgressFiles(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	now := uint64(time.Now().Unix())
	maxAgeSecs := uint64(maxAge.Seconds())
	cleaned := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".download") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		p, err := LoadDownloadProgress(path)
		if err != nil {
			continue
		}
		age := now - p.LastUpdated
		if now < p.LastUpdated {
			age = 0
		}
		if p.IsComplete && age > maxAgeSecs {
			if err := os.Remove(path); err == nil {
				cleaned++
			}
		}
	}
	return cleaned, nil
}
