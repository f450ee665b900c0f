package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed tolerances.yaml
var tolerancesYAML []byte

type Config struct {
	Recognition RecognitionConfig
	Encoder     EncoderConfig
	Database    DatabaseConfig
	MariaDB     MariaDBConfig
	Calibration CalibrationConfig
}

type RecognitionConfig struct {
	MaxImagesPerUser int     // per-user encoding quota (default 5)
	Tolerance        float64 // default match tolerance, calibrated per encoder model
	EmbeddingDim     int     // embedding length produced by the encoder model
	CacheMaxOwners   int     // bound on cached owner entries, 0 = unbounded
}

type EncoderConfig struct {
	URL   string // face encoding service base URL (e.g., http://localhost:8000)
	Model string // encoder model name, selects calibration defaults
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MariaDBConfig struct {
	DSN string // MariaDB/MySQL DSN, alternative storage backend
}

// CalibrationConfig holds per-model defaults for embedding dimension and
// match tolerance. A tolerance only makes sense relative to the model that
// produced the embeddings, so the two ship together.
type CalibrationConfig struct {
	Models map[string]ModelCalibration `yaml:"models"`
}

type ModelCalibration struct {
	Dim       int     `yaml:"dim"`
	Tolerance float64 `yaml:"tolerance"`
}

const defaultEncoderModel = "dlib"

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var calibration CalibrationConfig
	if err := yaml.Unmarshal(tolerancesYAML, &calibration); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded tolerances.yaml: " + err.Error())
	}

	model := os.Getenv("ENCODER_MODEL")
	if model == "" {
		model = defaultEncoderModel
	}
	cal, ok := calibration.Models[model]
	if !ok {
		cal = calibration.Models[defaultEncoderModel]
	}

	return &Config{
		Recognition: RecognitionConfig{
			MaxImagesPerUser: envInt("MAX_IMAGES_PER_USER", 5),
			Tolerance:        envFloat("FACE_TOLERANCE", cal.Tolerance),
			EmbeddingDim:     envInt("EMBEDDING_DIM", cal.Dim),
			CacheMaxOwners:   envInt("CACHE_MAX_OWNERS", 0),
		},
		Encoder: EncoderConfig{
			URL:   os.Getenv("ENCODER_URL"),
			Model: model,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		MariaDB: MariaDBConfig{
			DSN: os.Getenv("MARIADB_DSN"),
		},
		Calibration: calibration,
	}
}
