package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DataDirEnv is the environment variable Tesseract reads its data path from.
const DataDirEnv = "TESSDATA_PREFIX"

// wellKnownDataDirs are the install locations of the common packages.
var wellKnownDataDirs = []string{
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
	"/opt/local/share/tessdata",
}

// TrainedDataExt is the file extension of a language pack.
const TrainedDataExt = ".traineddata"

// JoinLanguages builds Tesseract's "eng+fra" language selector.
func JoinLanguages(langs []string) string {
	return strings.Join(langs, "+")
}

// ResolveDataDir picks the trained data directory: dir when set, then
// $TESSDATA_PREFIX, then the first well-known location that exists.
// TESSDATA_PREFIX may point at the tessdata directory or at its parent.
func ResolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if prefix := os.Getenv(DataDirEnv); prefix != "" {
		if isDir(filepath.Join(prefix, "tessdata")) {
			return filepath.Join(prefix, "tessdata"), nil
		}
		return prefix, nil
	}
	for _, candidate := range wellKnownDataDirs {
		if isDir(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no tessdata directory found, set %s", DataDirEnv)
}

// TrainedData lists the language packs in dir, sorted by name.
func TrainedData(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+TrainedDataExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(matches) == 0 && !isDir(dir) {
		return nil, fmt.Errorf("tessdata directory %s does not exist", dir)
	}

	langs := make([]string, 0, len(matches))
	for _, m := range matches {
		langs = append(langs, strings.TrimSuffix(filepath.Base(m), TrainedDataExt))
	}
	sort.Strings(langs)
	return langs, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
