package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	DBPath       string
	SessionIdle  int // минуты простоя до выгрузки сессии из памяти, 0 отключает
	Editor       EditorConfig
}

// EditorConfig — настройки редактора, можно задать в TOML файле (EDITOR_CONFIG).
type EditorConfig struct {
	CanvasID     string  `toml:"canvas_id"`
	PanelID      string  `toml:"panel_id"`
	CanvasWidth  int     `toml:"canvas_width"`
	CanvasHeight int     `toml:"canvas_height"`
	GridSpacing  float64 `toml:"grid_spacing"`
	GridColor    string  `toml:"grid_color"`
	ExportScale  float64 `toml:"export_scale"`
	Background   string  `toml:"background"`
}

func DefaultEditor() EditorConfig {
	return EditorConfig{
		CanvasID:     "diagram-canvas",
		PanelID:      "properties-panel",
		CanvasWidth:  800,
		CanvasHeight: 600,
		GridSpacing:  20,
		GridColor:    "#e0e0e0",
		ExportScale:  2,
		Background:   "#ffffff",
	}
}

// Load загружает конфигурацию из переменных окружения и, если указан, из TOML файла
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		DBPath:       getEnv("EDITOR_DB_PATH", "data/db/editor.db"),
		SessionIdle:  getEnvAsInt("SESSION_IDLE_MINUTES", 30),
		Editor:       DefaultEditor(),
	}

	if path := os.Getenv("EDITOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read editor config: %w", err)
		}
		if err := cfg.Editor.Load(string(data)); err != nil {
			return nil, fmt.Errorf("editor config %s: %w", path, err)
		}
	}

	cfg.Editor.CanvasWidth = getEnvAsInt("CANVAS_WIDTH", cfg.Editor.CanvasWidth)
	cfg.Editor.CanvasHeight = getEnvAsInt("CANVAS_HEIGHT", cfg.Editor.CanvasHeight)

	if err := cfg.Editor.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load накладывает TOML поверх текущих значений: отсутствующие ключи не меняются.
func (e *EditorConfig) Load(data string) error {
	if _, err := toml.Decode(data, e); err != nil {
		return err
	}
	return nil
}

func (e EditorConfig) Validate() error {
	if e.CanvasID == "" || e.PanelID == "" {
		return fmt.Errorf("canvas_id and panel_id are required")
	}
	if e.CanvasWidth <= 0 || e.CanvasHeight <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", e.CanvasWidth, e.CanvasHeight)
	}
	if e.GridSpacing <= 0 {
		return fmt.Errorf("grid_spacing must be positive, got %v", e.GridSpacing)
	}
	if e.ExportScale <= 0 {
		return fmt.Errorf("export_scale must be positive, got %v", e.ExportScale)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
