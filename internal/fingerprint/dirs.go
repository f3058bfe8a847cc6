package fingerprint

import (
	"os"
	"path/filepath"
)

// dirExists reports whether root/name exists and whether it is a
// directory. The ok return is false only on a stat error other than
// "not exist".
func dirExists(root, name string) (isDir bool, ok bool) {
	info, err := os.Stat(filepath.Join(root, name))
	if err != nil {
		return false, os.IsNotExist(err)
	}
	return info.IsDir(), true
}
