package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskpad.db"

	appDirName = "taskpad"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	MoveUp         string `toml:"move_up"`
	MoveDown       string `toml:"move_down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Edit           string `toml:"edit"`
	Subtasks       string `toml:"subtasks"`
	Search         string `toml:"search"`
	Filter         string `toml:"filter"`
	PriorityFilter string `toml:"priority_filter"`
	Sort           string `toml:"sort"`
	SortDirection  string `toml:"sort_direction"`
	Select         string `toml:"select"`
	SelectAll      string `toml:"select_all"`
	ClearSelection string `toml:"clear_selection"`
	BulkComplete   string `toml:"bulk_complete"`
	BulkDelete     string `toml:"bulk_delete"`
	BulkPriority   string `toml:"bulk_priority"`
	BulkTag        string `toml:"bulk_tag"`
	Theme          string `toml:"theme"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	DefaultFilter string `toml:"default_filter"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath returns the config file location under the user
// config directory, falling back to the working directory when the
// platform has none.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, appDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDBPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(base, appDirName, DefaultDBName)
}

func defaultConfig() Config {
	return Config{
		DBPath:        defaultDBPath(),
		DefaultFilter: "all",
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			MoveUp:         "K",
			MoveDown:       "J",
			Toggle:         " ",
			Delete:         "d",
			Edit:           "e",
			Subtasks:       "enter",
			Search:         "/",
			Filter:         "f",
			PriorityFilter: "p",
			Sort:           "s",
			SortDirection:  "S",
			Select:         "v",
			SelectAll:      "V",
			ClearSelection: "ctrl+l",
			BulkComplete:   "c",
			BulkDelete:     "D",
			BulkPriority:   "P",
			BulkTag:        "t",
			Theme:          "T",
			Confirm:        "enter",
			Cancel:         "esc",
		},
	}
}
