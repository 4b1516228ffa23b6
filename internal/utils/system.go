package utils

import "os/user"

// GetUsername returns the OS username of the current user.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
