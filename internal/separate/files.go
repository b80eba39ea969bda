package separate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// stemPathFor is where a stage's vocals stem lives: next to the source
// audio, named after the stage, e.g. /data/ISRC/demucs_ft.wav.
func stemPathFor(audioPath, stage string) string {
	return filepath.Join(filepath.Dir(audioPath), stage+".wav")
}

func trackName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// moveFile renames src to dst, copying across filesystems when rename
// fails (temp dirs often live on a different mount than the dataset).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	return os.Remove(src)
}
