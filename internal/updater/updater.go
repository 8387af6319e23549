// Package updater checks GitHub releases for a newer build and swaps the
// running executable in place.
package updater

import (
	"archive/tar"
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/meikiegian-prog/SFree-Manager/internal/version"
)

const (
	githubAPIURL   = "https://api.github.com/repos/%s/%s/releases/latest"
	executableBase = "sfree"
)

// Release is the subset of the GitHub release payload we care about.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// SelfUpdate downloads and installs the latest release when it is newer than
// the running build. Development builds never update.
func SelfUpdate(owner, repo string) error {
	current := version.Version
	if current == "dev" {
		log.Println("updater: development build, skipping update check")
		return nil
	}

	latestTag, downloadURL, err := CheckForUpdates(owner, repo)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if latestTag == "" || downloadURL == "" {
		return nil
	}
	if compareVersions(current, latestTag) >= 0 {
		return nil
	}

	log.Printf("updater: new version %s available (current %s)", latestTag, current)

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	if err := downloadAndReplace(downloadURL, executable); err != nil {
		return fmt.Errorf("failed to install update: %w", err)
	}

	log.Printf("updater: updated to %s, restart to apply", latestTag)
	return nil
}

// CheckForUpdates returns the latest release tag and the download URL of the
// asset matching the current OS and architecture.
func CheckForUpdates(owner, repo string) (string, string, error) {
	resp, err := http.Get(fmt.Sprintf(githubAPIURL, owner, repo))
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch release info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", "", fmt.Errorf("failed to decode release JSON: %w", err)
	}

	platform := fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
	var suffix string
	switch runtime.GOOS {
	case "windows":
		suffix = platform + ".zip"
	case "linux", "darwin":
		suffix = platform + ".tar.xz"
	default:
		return "", "", fmt.Errorf("unsupported platform for self-update: %s", platform)
	}

	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, executableBase) && strings.HasSuffix(asset.Name, suffix) {
			return release.TagName, asset.BrowserDownloadURL, nil
		}
	}
	return "", "", fmt.Errorf("no asset found for %s", platform)
}

// compareVersions orders two dotted version strings, ignoring a leading v.
// Returns -1, 0 or 1.
func compareVersions(a, b string) int {
	pa := strings.Split(strings.TrimPrefix(a, "v"), ".")
	pb := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var na, nb int
		if i < len(pa) {
			na, _ = strconv.Atoi(pa[i])
		}
		if i < len(pb) {
			nb, _ = strconv.Atoi(pb[i])
		}
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func downloadAndReplace(downloadURL, executable string) error {
	tmpDir, err := os.MkdirTemp("", "sfree-update-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, filepath.Base(downloadURL))
	if err := download(downloadURL, archivePath); err != nil {
		return err
	}

	wantName := executableBase
	if runtime.GOOS == "windows" {
		wantName += ".exe"
	}

	var extracted string
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		extracted, err = extractTarXz(archivePath, tmpDir, wantName)
	case strings.HasSuffix(archivePath, ".zip"):
		extracted, err = extractZip(archivePath, tmpDir, wantName)
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}
	if err != nil {
		return err
	}
	if extracted == "" {
		return fmt.Errorf("executable %s not found in archive", wantName)
	}

	return replaceExecutable(executable, extracted)
}

func download(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extractTarXz(archivePath, destDir, wantName string) (string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	xzReader, err := xz.NewReader(file)
	if err != nil {
		return "", err
	}

	tr := tar.NewReader(xzReader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != wantName {
			continue
		}

		dest := filepath.Join(destDir, wantName)
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, header.FileInfo().Mode())
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return "", err
		}
		out.Close()
		return dest, nil
	}
	return "", nil
}

func extractZip(archivePath, destDir, wantName string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, f := range r.File {
		if filepath.Base(f.Name) != wantName {
			continue
		}

		in, err := f.Open()
		if err != nil {
			return "", err
		}

		dest := filepath.Join(destDir, wantName)
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
		if err != nil {
			in.Close()
			return "", err
		}
		if _, err := io.Copy(out, in); err != nil {
			in.Close()
			out.Close()
			return "", err
		}
		in.Close()
		out.Close()
		return dest, nil
	}
	return "", nil
}

// replaceExecutable moves the new binary over the running one. The old
// binary is renamed aside first, since the running file cannot be removed on
// every platform.
func replaceExecutable(current, replacement string) error {
	backup := current + ".old"
	os.Remove(backup)

	if err := os.Rename(current, backup); err != nil {
		return fmt.Errorf("failed to move old executable aside: %w", err)
	}
	if err := os.Rename(replacement, current); err != nil {
		// Rename across filesystems fails; fall back to copy.
		if copyErr := copyExecutable(replacement, current); copyErr != nil {
			os.Rename(backup, current)
			return fmt.Errorf("failed to install new executable: %w", copyErr)
		}
	}
	if err := os.Chmod(current, 0755); err != nil {
		return fmt.Errorf("failed to set executable bit: %w", err)
	}
	return nil
}

func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
