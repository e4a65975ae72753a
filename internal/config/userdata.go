package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// UserData holds what the client remembers between runs. Form values are
// never stored here.
type UserData struct {
	LastDirectory string    `json:"last_directory"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	path string
}

// LoadUserData loads ~/.folio-cli/user.data, falling back to empty data
func LoadUserData() *UserData {
	path, err := getUserDataPath()
	if err != nil {
		return createDefaultUserData("")
	}
	return LoadUserDataFrom(path)
}

// LoadUserDataFrom loads user data from path. A missing or unreadable
// file yields empty data that will be saved to path.
func LoadUserDataFrom(path string) *UserData {
	data, err := os.ReadFile(path)
	if err != nil {
		return createDefaultUserData(path)
	}

	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		// Invalid JSON, return default
		return createDefaultUserData(path)
	}
	userData.path = path
	return &userData
}

// SaveUserData writes the data back to where it was loaded from
func (ud *UserData) SaveUserData() error {
	if ud.path == "" {
		return os.ErrInvalid
	}

	ud.UpdatedAt = time.Now()
	if ud.CreatedAt.IsZero() {
		ud.CreatedAt = ud.UpdatedAt
	}

	data, err := json.MarshalIndent(ud, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(ud.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(ud.path, data, 0644)
}

// SetLastDirectory records the directory of the last adopted document and saves
func (ud *UserData) SetLastDirectory(dir string) error {
	if dir == "" || dir == ud.LastDirectory {
		return nil
	}
	ud.LastDirectory = dir
	return ud.SaveUserData()
}

// StartDirectory returns the last directory if it still exists
func (ud *UserData) StartDirectory() string {
	if ud.LastDirectory == "" {
		return ""
	}
	if info, err := os.Stat(ud.LastDirectory); err != nil || !info.IsDir() {
		return ""
	}
	return ud.LastDirectory
}

func createDefaultUserData(path string) *UserData {
	now := time.Now()
	return &UserData{CreatedAt: now, UpdatedAt: now, path: path}
}

// getUserDataPath returns the path to the user.data file, next to the config file
func getUserDataPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".folio-cli", "user.data"), nil
}
