package util

import (
	"os"
	"os/user"
)

func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// GetCurrentUsername returns the name of the user running the process,
// used to build per-user default paths.
func GetCurrentUsername() string {
	u, err := user.Current()
	if err != nil {
		return "default"
	}
	return u.Username
}
