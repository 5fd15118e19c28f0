package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"gearboy/internal/gamedb"
	"gearboy/internal/logging"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCatalogFile verifies the persisted catalog decodes. A missing file
// passes since the first mutation creates it.
func CheckCatalogFile(path string) Result {
	const name = "Catalog"

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty)", path)}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (corrupt, will be reset: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, len(entries))}
}

// CheckTitleDatabase verifies the configured title database opens.
func CheckTitleDatabase(path string) Result {
	const name = "Title database"

	src, err := gamedb.Open(path, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer src.Close()

	label := path
	if label == "" {
		label = "bundled"
	}
	if counter, ok := src.(interface{ Len() int }); ok {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d titles)", label, counter.Len())}
	}
	return Result{Name: name, Passed: true, Detail: label}
}

// CheckBoxArtService verifies the thumbnail server answers. Any response
// below 500 counts as reachable since the root path need not exist.
func CheckBoxArtService(ctx context.Context, baseURL string, timeout time.Duration) Result {
	const name = "Box art service"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("server error (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", base)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
