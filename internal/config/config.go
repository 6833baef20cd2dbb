package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	Target             string `mapstructure:"target"`
	WorkDir            string `mapstructure:"work_dir"`
	BackupSuffix       string `mapstructure:"backup_suffix"`
	ExtractDir         string `mapstructure:"extract_dir"`
	AppImageTool       string `mapstructure:"appimage_tool"`
	ToolTimeoutSeconds int    `mapstructure:"tool_timeout_seconds"`
	Output             string `mapstructure:"output"`
	LogLevel           string `mapstructure:"log_level"`
	LogFormat          string `mapstructure:"log_format"`
}

func Default() *Config {
	return &Config{
		WorkDir:            ".",
		BackupSuffix:       ".bak",
		ExtractDir:         "squashfs-root",
		AppImageTool:       "appimagetool-x86_64.AppImage",
		ToolTimeoutSeconds: 600,
		Output:             "text",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads configuration from an explicit file, or from idshift.yaml in
// the conventional locations. The tool never writes configuration.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("idshift")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("IDSHIFT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "idshift")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "idshift")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "idshift")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "idshift")
	}
}
