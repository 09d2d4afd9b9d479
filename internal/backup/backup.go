// Package backup archives and restores the embedded SQLite catalog as a
// tar.gz holding the database snapshot, a manifest, and an optional config.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HerbHall/wakdex/internal/store"
	"github.com/HerbHall/wakdex/internal/version"
)

// ManifestName is the archive entry describing the snapshot.
const ManifestName = "manifest.json"

// Manifest records what an archive contains.
type Manifest struct {
	Version     string         `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	Database    string         `json:"database"`
	Config      string         `json:"config,omitempty"`
	Collections map[string]int `json:"collections"`
}

// Backup snapshots s into a tar.gz at outputPath. The database is stored
// under dbName. configPath is included when it names an existing file.
func Backup(ctx context.Context, s *store.SQLiteStore, dbName, configPath, outputPath string, now time.Time) (Manifest, error) {
	counts, err := s.Collections(ctx)
	if err != nil {
		return Manifest{}, err
	}

	tmp, err := os.MkdirTemp("", "wakdex-backup-")
	if err != nil {
		return Manifest{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	snapshot := filepath.Join(tmp, dbName)
	if err := s.Snapshot(ctx, snapshot); err != nil {
		return Manifest{}, err
	}

	m := Manifest{
		Version:     version.Short(),
		CreatedAt:   now.UTC(),
		Database:    dbName,
		Collections: counts,
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			m.Config = filepath.Base(configPath)
		}
	}

	if err := writeArchive(outputPath, m, snapshot, configPath); err != nil {
		os.Remove(outputPath)
		return Manifest{}, err
	}
	return m, nil
}

func writeArchive(outputPath string, m Manifest, snapshot, configPath string) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gw)

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    ManifestName,
		Mode:    0o644,
		Size:    int64(len(manifest)),
		ModTime: m.CreatedAt,
	}); err != nil {
		return err
	}
	if _, err := tw.Write(manifest); err != nil {
		return err
	}

	if err := addFileToTar(tw, snapshot, m.Database); err != nil {
		return fmt.Errorf("adding database to archive: %w", err)
	}
	if m.Config != "" {
		if err := addFileToTar(tw, configPath, m.Config); err != nil {
			return fmt.Errorf("adding config to archive: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return outFile.Close()
}

// addFileToTar adds a single file to the tar archive under the given name.
func addFileToTar(tw *tar.Writer, filePath, archiveName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = archiveName

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	_, err = io.Copy(tw, f)
	return err
}

// Restore extracts an archive created by Backup into dataDir. Existing files
// are only replaced when force is set.
func Restore(_ context.Context, input, dataDir string, force bool) (Manifest, error) {
	f, err := os.Open(input)
	if err != nil {
		return Manifest{}, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading gzip: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("creating data dir: %w", err)
	}

	var (
		m        Manifest
		restored []string
	)
	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if filepath.Base(hdr.Name) != hdr.Name || hdr.Name == ".." {
			return Manifest{}, fmt.Errorf("archive entry %q escapes the data dir", hdr.Name)
		}

		if hdr.Name == ManifestName {
			if err := json.NewDecoder(tr).Decode(&m); err != nil {
				return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
			}
			continue
		}

		target := filepath.Join(dataDir, hdr.Name)
		if err := extract(tr, target, force); err != nil {
			return Manifest{}, err
		}
		restored = append(restored, hdr.Name)
	}

	if m.Database == "" {
		return Manifest{}, errors.New("archive has no manifest")
	}
	for _, name := range restored {
		if name == m.Database {
			return m, nil
		}
	}
	return Manifest{}, fmt.Errorf("archive is missing database %q", m.Database)
}

// extract writes r to a temp file next to target, then renames it into place.
func extract(r io.Reader, target string, force bool) error {
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", target)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".restore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
